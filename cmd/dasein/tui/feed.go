package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/feed"
	"github.com/cotovicz/dasein/pkg/live"
	"github.com/cotovicz/dasein/pkg/model"
)

// FeedMode represents the current mode of the feed UI
type FeedMode int

const (
	ModeBrowse FeedMode = iota
	ModeSearch
	ModeDetail
	ModeError
)

// FeedModel is the main Bubbletea model for the live feed browser
type FeedModel struct {
	mode FeedMode

	ctx      context.Context
	store    document.Store
	sub      *live.Subscription[model.Creation]
	composer *feed.Composer

	list   list.Model
	search textinput.Model
	detail ThreadView

	availableTags []string
	selectedTags  map[string]struct{}

	err    error
	width  int
	height int
}

// NewFeedModel creates a new feed UI model
func NewFeedModel(ctx context.Context, store document.Store, sub *live.Subscription[model.Creation], composer *feed.Composer, availableTags []string) FeedModel {
	delegate := PostItemDelegate{}
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Feed"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	search := textinput.New()
	search.Placeholder = "search title, body, author"
	search.Prompt = "/ "

	return FeedModel{
		mode:          ModeBrowse,
		ctx:           ctx,
		store:         store,
		sub:           sub,
		composer:      composer,
		list:          l,
		search:        search,
		availableTags: availableTags,
		selectedTags:  make(map[string]struct{}),
	}
}

// Init initializes the model
func (m FeedModel) Init() tea.Cmd {
	return tea.Batch(
		waitForFeedCmd(m.composer, m.sub),
		tea.EnterAltScreen,
	)
}

// Messages
type feedUpdatedMsg []model.Creation

type feedClosedMsg struct {
	err error
}

type threadLoadedMsg struct {
	view ThreadView
}

type errorMsg struct {
	err error
}

// Commands
func waitForFeedCmd(composer *feed.Composer, sub *live.Subscription[model.Creation]) tea.Cmd {
	return func() tea.Msg {
		creations, ok := <-composer.Updates()
		if !ok {
			return feedClosedMsg{err: sub.Err()}
		}
		return feedUpdatedMsg(creations)
	}
}

func loadThreadCmd(ctx context.Context, store document.Store, post model.Creation) tea.Cmd {
	return func() tea.Msg {
		q := document.NewQuery(model.CollectionComments).
			WhereEq(model.FieldCreationID, post.ID).
			OrderBy(model.FieldTimestamp, document.Ascending)
		comments, err := live.FetchOnce(ctx, store, q, model.DecodeComment, nil)
		if err != nil {
			return errorMsg{err: err}
		}
		return threadLoadedMsg{view: ThreadView{Post: post, Comments: comments}}
	}
}

// Update handles messages
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case feedUpdatedMsg:
		items := make([]list.Item, len(msg))
		for i, c := range msg {
			items[i] = PostItem{Creation: c}
		}
		m.list.SetItems(items)
		return m, waitForFeedCmd(m.composer, m.sub)

	case feedClosedMsg:
		if msg.err != nil {
			m.mode = ModeError
			m.err = msg.err
			return m, nil
		}
		return m, tea.Quit

	case threadLoadedMsg:
		m.mode = ModeDetail
		m.detail = msg.view
		return m, nil

	case errorMsg:
		m.mode = ModeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeBrowse:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit

			case "/":
				m.mode = ModeSearch
				m.search.SetValue(m.composer.Query())
				m.search.Focus()
				return m, textinput.Blink

			case "enter":
				item, ok := m.list.SelectedItem().(PostItem)
				if !ok {
					return m, nil
				}
				return m, loadThreadCmd(m.ctx, m.store, item.Creation)

			case "1", "2", "3", "4", "5", "6", "7", "8", "9":
				idx := int(msg.String()[0] - '1')
				if idx >= len(m.availableTags) {
					return m, nil
				}
				tag := m.availableTags[idx]
				if _, ok := m.selectedTags[tag]; ok {
					delete(m.selectedTags, tag)
				} else {
					m.selectedTags[tag] = struct{}{}
				}
				m.composer.ToggleTag(tag)
				return m, nil
			}

		case ModeSearch:
			switch msg.String() {
			case "enter":
				m.mode = ModeBrowse
				m.search.Blur()
				m.composer.SetQuery(m.search.Value())
				return m, nil
			case "esc", "ctrl+c":
				m.mode = ModeBrowse
				m.search.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.search, cmd = m.search.Update(msg)
				return m, cmd
			}

		case ModeDetail:
			switch msg.String() {
			case "esc", "q", "enter":
				m.mode = ModeBrowse
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}

		case ModeError:
			switch msg.String() {
			case "ctrl+c", "q", "enter":
				return m, tea.Quit
			}
		}
	}

	// Update list
	if m.mode == ModeBrowse {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI
func (m FeedModel) View() string {
	switch m.mode {
	case ModeBrowse, ModeSearch:
		var header string
		if m.mode == ModeSearch {
			header = m.search.View()
		} else if q := m.composer.Query(); q != "" {
			header = mutedStyle.Render("filter: " + q)
		}

		tagBar := TagBar(m.availableTags, m.selectedTags)

		help := helpStyle.Render(
			FormatKey("↑/↓", "navigate") + " • " +
				FormatKey("enter", "open") + " • " +
				FormatKey("/", "search") + " • " +
				FormatKey("1-9", "toggle tag") + " • " +
				FormatKey("q", "quit"),
		)
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			tagBar,
			m.list.View(),
			help,
		)

	case ModeDetail:
		help := helpStyle.Render(FormatKey("esc", "back") + " • " + FormatKey("ctrl+c", "quit"))
		return lipgloss.JoinVertical(lipgloss.Left,
			m.detail.View(),
			help,
		)

	case ModeError:
		msg := titleStyle.Render("Feed Unavailable") + "\n\n" +
			errorStyle.Render(m.err.Error()) + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))

		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(msg),
		)
	}

	return "Unknown mode"
}

// RunFeedUI starts the interactive feed browser
func RunFeedUI(ctx context.Context, store document.Store, availableTags []string) error {
	q := document.NewQuery(model.CollectionCreations).
		OrderBy(model.FieldTimestamp, document.Descending)
	sub, err := live.Watch(ctx, store, q, model.DecodeCreation, nil)
	if err != nil {
		return err
	}
	defer sub.Stop()

	composer := feed.NewComposer()
	go func() {
		for snap := range sub.Updates() {
			composer.SetBase(snap)
		}
		composer.Close()
	}()

	p := tea.NewProgram(NewFeedModel(ctx, store, sub, composer, availableTags))
	_, err = p.Run()
	return err
}
