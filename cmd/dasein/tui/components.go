package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cotovicz/dasein/pkg/model"
	"github.com/cotovicz/dasein/pkg/thread"
)

// PostItem represents a post in the feed list
type PostItem struct {
	Creation model.Creation
}

func (i PostItem) FilterValue() string { return i.Creation.Title }
func (i PostItem) Title() string {
	return i.Creation.Title
}
func (i PostItem) Description() string {
	parts := []string{
		i.Creation.AuthorName,
		i.Creation.Timestamp.Format("2006-01-02 15:04"),
		fmt.Sprintf("%d comment(s)", i.Creation.CommentCount),
	}
	line := mutedStyle.Render(strings.Join(parts, " · "))
	if len(i.Creation.Tags) > 0 {
		tags := make([]string, len(i.Creation.Tags))
		for n, t := range i.Creation.Tags {
			tags[n] = tagStyle.Render("#" + t)
		}
		line += " " + strings.Join(tags, " ")
	}
	return line
}

// PostItemDelegate is a custom delegate for feed list items
type PostItemDelegate struct{}

func (d PostItemDelegate) Height() int                             { return 2 }
func (d PostItemDelegate) Spacing() int                            { return 1 }
func (d PostItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d PostItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(PostItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}

// TagBar renders the available tags with the selected ones highlighted,
// numbered by their toggle key.
func TagBar(available []string, selected map[string]struct{}) string {
	if len(available) == 0 {
		return ""
	}
	parts := make([]string, 0, len(available))
	for i, t := range available {
		label := fmt.Sprintf("%d:#%s", i+1, t)
		if _, ok := selected[t]; ok {
			parts = append(parts, tagSelectedStyle.Render(label))
		} else {
			parts = append(parts, tagStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// ThreadView renders a post with its comment thread
type ThreadView struct {
	Post     model.Creation
	Comments []model.Comment
}

// View renders the thread view
func (t ThreadView) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(t.Post.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(t.Post.AuthorName + " · " + t.Post.Timestamp.Format("2006-01-02 15:04")))
	b.WriteString("\n\n")
	if t.Post.Body != "" {
		b.WriteString(t.Post.Body)
		b.WriteString("\n\n")
	}
	if t.Post.ImageURL != "" {
		b.WriteString(mutedStyle.Render("image: " + t.Post.ImageURL))
		b.WriteString("\n\n")
	}

	if len(t.Comments) == 0 {
		b.WriteString(mutedStyle.Render("No comments"))
	} else {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%d comment(s)", len(t.Comments))))
		b.WriteString("\n\n")
		ix := thread.Build(t.Comments)
		ix.Walk(func(c model.Comment, depth int) {
			indent := strings.Repeat("    ", depth)
			b.WriteString(indent + successStyle.Render(c.AuthorName) + "\n")
			b.WriteString(indent + c.Text + "\n")
		})
	}

	return boxStyle.Render(b.String())
}
