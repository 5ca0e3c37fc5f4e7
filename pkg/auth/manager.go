package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/model"
)

// collectionAccounts holds one document per account, keyed by normalized
// email so sign-in is a point read.
const collectionAccounts = "accounts"

const (
	fieldUID          = "uid"
	fieldEmail        = "email"
	fieldPasswordHash = "passwordHash"
	fieldCreatedAt    = "createdAt"
)

const minPasswordLength = 6

// Config holds configuration for the auth manager.
type Config struct {
	// Secret signs session tokens. Required.
	Secret []byte

	// SessionTTL bounds session token validity. Zero means 30 days.
	SessionTTL time.Duration

	// Logger receives auth log records. Nil means slog's default.
	Logger *slog.Logger
}

// Manager implements Provider on top of a document store.
type Manager struct {
	store  document.Store
	secret []byte
	ttl    time.Duration
	logger *slog.Logger

	mu           sync.Mutex
	current      *User
	token        string
	observers    map[uint64]*StateObserver
	nextObserver uint64
}

// New creates an auth manager.
func New(store document.Store, cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     store,
		secret:    cfg.Secret,
		ttl:       ttl,
		logger:    logger,
		observers: make(map[uint64]*StateObserver),
	}, nil
}

func accountID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account and signs it in.
func (m *Manager) SignUp(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, &model.ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if len(password) < minPasswordLength {
		return User{}, &model.ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	id := accountID(email)
	_, err := m.store.Get(ctx, collectionAccounts, id)
	switch {
	case err == nil:
		return User{}, ErrEmailTaken
	case !errors.Is(err, document.ErrNotFound):
		return User{}, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	uid := m.store.NewID()
	fields := map[string]any{
		fieldUID:          uid,
		fieldEmail:        email,
		fieldPasswordHash: string(hash),
		fieldCreatedAt:    document.ServerTimestamp,
	}
	if err := m.store.Set(ctx, collectionAccounts, id, fields); err != nil {
		return User{}, fmt.Errorf("failed to create account: %w", err)
	}

	user := User{UID: uid, Email: email}
	m.establishSession(user)
	m.logger.Info("account created", "uid", uid)
	return user, nil
}

// SignIn authenticates an existing account.
func (m *Manager) SignIn(ctx context.Context, email, password string) (User, error) {
	doc, err := m.store.Get(ctx, collectionAccounts, accountID(email))
	if errors.Is(err, document.ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load account: %w", err)
	}

	hash, _ := doc.Fields[fieldPasswordHash].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	uid, _ := doc.Fields[fieldUID].(string)
	storedEmail, _ := doc.Fields[fieldEmail].(string)
	user := User{UID: uid, Email: storedEmail}
	m.establishSession(user)
	return user, nil
}

// SignOut clears the current session.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	m.token = ""
	for _, o := range m.observers {
		o.publish(nil)
	}
	m.mu.Unlock()
}

// CurrentUser returns the signed-in user, if any.
func (m *Manager) CurrentUser() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return User{}, false
	}
	return *m.current, true
}

// Token returns the current session token, or empty when signed out. Callers
// may persist it and restore the session later with Resume.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Resume restores a session from a previously issued token.
func (m *Manager) Resume(tokenString string) (User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return User{}, ErrSessionExpired
	}

	var email string
	if len(claims.Audience) > 0 {
		email = claims.Audience[0]
	}
	user := User{UID: claims.Subject, Email: email}
	m.mu.Lock()
	m.current = &user
	m.token = tokenString
	for _, o := range m.observers {
		o.publish(&user)
	}
	m.mu.Unlock()
	return user, nil
}

// ObserveState implements Provider.
func (m *Manager) ObserveState() *StateObserver {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextObserver++
	o := &StateObserver{
		id:      m.nextObserver,
		manager: m,
		states:  make(chan *User, 1),
	}
	m.observers[o.id] = o
	o.publish(m.current)
	return o
}

func (m *Manager) dropObserver(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.observers[id]; ok {
		delete(m.observers, id)
		close(o.states)
	}
}

func (m *Manager) establishSession(user User) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.UID,
		Audience:  jwt.ClaimStrings{user.Email},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		// Signing only fails on a broken secret; the session still works in
		// process, it just cannot be resumed later.
		m.logger.Warn("failed to sign session token", "error", err)
	}

	m.mu.Lock()
	m.current = &user
	m.token = token
	for _, o := range m.observers {
		o.publish(&user)
	}
	m.mu.Unlock()
}
