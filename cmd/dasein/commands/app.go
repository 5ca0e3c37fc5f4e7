package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cotovicz/dasein/pkg/auth"
	"github.com/cotovicz/dasein/pkg/blob"
	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/profile"
	"github.com/cotovicz/dasein/pkg/social"
	"github.com/cotovicz/dasein/pkg/store/badgerstore"
	"github.com/cotovicz/dasein/pkg/store/pgstore"
)

const (
	secretFile  = "auth.secret"
	sessionFile = "session.token"
)

// app wires the store, blob storage, and services for one command invocation.
// A previously persisted session is resumed during construction, so commands
// that need authentication see the signed-in user immediately.
type app struct {
	store    document.Store
	blobs    blob.Storage
	auth     *auth.Manager
	profiles *profile.Service
	social   *social.Service
	logger   *slog.Logger
	dataDir  string
}

func newApp(ctx context.Context) (*app, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	store, err := openStore(ctx, dir, logger)
	if err != nil {
		return nil, err
	}

	blobs, err := openBlobs(ctx, dir)
	if err != nil {
		store.Close()
		return nil, err
	}

	secret, err := loadOrCreateSecret(dir)
	if err != nil {
		store.Close()
		return nil, err
	}
	authm, err := auth.New(store, auth.Config{Secret: secret, Logger: logger})
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &app{
		store:    store,
		blobs:    blobs,
		auth:     authm,
		profiles: profile.NewService(store, logger),
		logger:   logger,
		dataDir:  dir,
	}
	a.social = social.NewService(store, blobs, authm, a.profiles, logger)
	a.resumeSession()
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}

// requireUser returns the signed-in user or an instruction to sign in.
func (a *app) requireUser() (auth.User, error) {
	user, ok := a.auth.CurrentUser()
	if !ok {
		return auth.User{}, errors.New("not signed in (run 'dasein signin' first)")
	}
	return user, nil
}

func (a *app) sessionPath() string {
	return filepath.Join(a.dataDir, sessionFile)
}

// saveSession persists the current session token so the next invocation can
// resume it.
func (a *app) saveSession() error {
	token := a.auth.Token()
	if token == "" {
		return errors.New("no session token to persist")
	}
	if err := os.WriteFile(a.sessionPath(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (a *app) clearSession() {
	if err := os.Remove(a.sessionPath()); err != nil && !os.IsNotExist(err) {
		a.logger.Warn("failed to remove session file", "error", err)
	}
}

func (a *app) resumeSession() {
	raw, err := os.ReadFile(a.sessionPath())
	if err != nil {
		return
	}
	if _, err := a.auth.Resume(strings.TrimSpace(string(raw))); err != nil {
		a.logger.Debug("stored session not resumable", "error", err)
		a.clearSession()
	}
}

func resolveDataDir() (string, error) {
	dir := dataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".dasein")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore(ctx context.Context, dir string, logger *slog.Logger) (document.Store, error) {
	if dbURL != "" {
		return pgstore.Connect(ctx, pgstore.Config{URL: dbURL, Logger: logger})
	}
	cfg := badgerstore.DefaultConfig(filepath.Join(dir, "store"))
	cfg.Logger = logger
	return badgerstore.Open(cfg)
}

func openBlobs(ctx context.Context, dir string) (blob.Storage, error) {
	if bucket != "" {
		return blob.NewGCS(ctx, bucket, credentialsFile)
	}
	mdir := mediaDir
	if mdir == "" {
		mdir = filepath.Join(dir, "media")
	}
	if err := os.MkdirAll(mdir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return blob.NewFS(mdir), nil
}

// loadOrCreateSecret reads the token-signing secret, generating one on first
// run.
func loadOrCreateSecret(dir string) ([]byte, error) {
	path := filepath.Join(dir, secretFile)
	if raw, err := os.ReadFile(path); err == nil {
		return raw, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read signing secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate signing secret: %w", err)
	}
	secret := []byte(hex.EncodeToString(buf))
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist signing secret: %w", err)
	}
	return secret, nil
}
