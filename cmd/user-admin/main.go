// Command user-admin performs operator tasks against the account store:
//
//	user-admin create-admin -email ops@example.com [-name "Ops"]
//	user-admin unlock -email jane@example.com
//	user-admin verify -email jane@example.com
//
// create-admin prompts for the password on a terminal and reads it from
// USER_ADMIN_PASSWORD otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/joshua31324324/user-management/internal/config"
	"github.com/joshua31324324/user-management/internal/observability"
	"github.com/joshua31324324/user-management/pkg/auth"
	"github.com/joshua31324324/user-management/pkg/domain"
	"github.com/joshua31324324/user-management/pkg/repository"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const passwordEnv = "USER_ADMIN_PASSWORD"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Storage != config.StoragePostgres {
		logger.Fatal("user-admin requires STORAGE=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	a := &admin{
		store:     repository.NewUsersRepository(db),
		passwords: auth.NewPasswordPolicy(cfg.PasswordPolicy),
		rules: auth.EmailRules{
			Strict:          cfg.Validation.StrictEmailValidation,
			BlockDisposable: cfg.Validation.BlockDisposableEmail,
		},
		readPassword: readPassword,
		out:          os.Stdout,
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: user-admin <create-admin|unlock|verify> -email <address> [-name <name>]")
}

type admin struct {
	store        auth.AccountStore
	passwords    *auth.PasswordPolicy
	rules        auth.EmailRules
	readPassword func() (string, error)
	out          io.Writer
}

func (a *admin) run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	email := fs.String("email", "", "account email address")
	name := fs.String("name", "", "display name (create-admin only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	switch command {
	case "create-admin":
		return a.createAdmin(ctx, *email, *name)
	case "unlock":
		return a.withAccount(ctx, *email, "unlocked", a.store.Unlock)
	case "verify":
		return a.withAccount(ctx, *email, "verified", a.store.MarkVerified)
	default:
		usage(a.out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *admin) createAdmin(ctx context.Context, email, name string) error {
	if err := auth.ValidateEmail(email, a.rules); err != nil {
		return err
	}

	password, err := a.readPassword()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if err := a.passwords.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	user := &domain.User{
		ID:            uuid.New(),
		Email:         auth.NormalizeEmail(email),
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = &name
	}

	if err := a.store.Create(ctx, user); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created admin %s (%s)\n", user.Email, user.ID)
	return nil
}

func (a *admin) withAccount(ctx context.Context, email, verb string, fn func(context.Context, uuid.UUID) error) error {
	user, err := a.store.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if err := fn(ctx, user.ID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s %s\n", verb, user.Email)
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		if v := os.Getenv(passwordEnv); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("stdin is not a terminal and %s is not set", passwordEnv)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
