package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/repository/memory"
)

var testParams = auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store    *memory.Store
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	recorder *metrics.InMemoryRecorder
	auth     *AuthService
	posts    *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}

	env := &testEnv{
		store:    memory.New(),
		hasher:   auth.NewPasswordHasher(testParams),
		tokens:   tokens,
		recorder: metrics.NewInMemory(),
	}
	env.auth, err = NewAuthService(env.store, env.hasher, env.tokens, env.recorder, discardLogger(), time.Second)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}
	env.posts = NewPostService(env.store, nil, env.recorder, discardLogger(), time.Second)
	return env
}

func (e *testEnv) register(t *testing.T, name, email, password string) *model.User {
	t.Helper()

	user, err := e.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return user
}
