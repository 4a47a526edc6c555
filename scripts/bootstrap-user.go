package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/metrics"
	"github.com/scribe/scribe/internal/repository"
	"github.com/scribe/scribe/internal/service"
)

type output struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		jwtSecret   = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Secret used to sign access tokens")
		name        = flag.String("name", "admin", "Display name")
		email       = flag.String("email", "admin@scribe.local", "User email")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "User password")
		tokenTTL    = flag.Duration("token-ttl", 24*time.Hour, "Access token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "password is required (-password or BOOTSTRAP_PASSWORD)")
		os.Exit(1)
	}

	tokens, err := auth.NewTokenIssuer(*jwtSecret, *tokenTTL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token issuer:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, *databaseURL); err != nil {
		fmt.Fprintln(os.Stderr, "migrate database:", err)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.NewAuthService(repo, auth.NewPasswordHasher(auth.DefaultParams), tokens, metrics.NewNoop(), logger, 10*time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, "auth service:", err)
		os.Exit(1)
	}

	// An existing account is reused when the password matches.
	_, err = svc.Register(ctx, service.RegisterInput{Name: *name, Email: *email, Password: *password})
	if err != nil && !errors.Is(err, service.ErrEmailTaken) {
		fmt.Fprintln(os.Stderr, "register user:", err)
		os.Exit(1)
	}

	result, err := svc.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	if err != nil {
		fmt.Fprintln(os.Stderr, "login:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      result.User.ID,
		Email:       result.User.Email,
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   int64(tokens.TTL().Seconds()),
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.AccessToken)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
