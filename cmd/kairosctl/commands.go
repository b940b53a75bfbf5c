package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gorm.io/gorm"

	"kairos/internal/auth"
	"kairos/internal/config"
	"kairos/internal/db"
	"kairos/internal/logging"
	"kairos/internal/repository"
	"kairos/internal/service"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(gormDB *gorm.DB, _ *zap.Logger) error {
				if err := db.AutoMigrate(gormDB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}

func createUserCmd() *cobra.Command {
	var username, name, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(gormDB *gorm.DB, log *zap.Logger) error {
				if err := db.AutoMigrate(gormDB); err != nil {
					return err
				}
				cfg := config.Load()
				svc := service.NewAuthService(
					repository.NewStore(gormDB).Users(),
					auth.NewTokenIssuer(auth.DefaultTokenConfig(cfg.SecretKey)),
					auth.NewTokenStore(nil),
					log,
				)
				return createUser(cmd.Context(), svc, cmd.OutOrStdout(), username, name, password)
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Login name (2-64 characters)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the username)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password; prompted for when omitted")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// createUser registers one account, prompting for the password when none
// was given on the command line.
func createUser(ctx context.Context, svc service.AuthService, w io.Writer, username, name, password string) error {
	if password == "" {
		pw, err := promptPassword(w)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = pw
	}

	user, err := svc.Register(ctx, username, name, password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "created user %q (id %d)\n", user.Username, user.ID)
	return err
}

func promptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(w, "Repeat password: "); err != nil {
		return "", err
	}
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return strings.TrimRight(string(first), "\r\n"), nil
}

func withDatabase(fn func(*gorm.DB, *zap.Logger) error) error {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log.Named("db"))
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer func() { _ = db.Close(gormDB) }()
	return fn(gormDB, log)
}
