// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"atelier/internal/models"
	"atelier/internal/store"
)

var (
	userEmail string
	userName  string
	userRole  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage back office accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a back office account",
	Long: `Creates a back office account. The password is read from the
ATELIER_PASSWORD environment variable, or from the first line of standard
input when that is unset. The user enrols in two-factor authentication on
first sign-in.

EXAMPLES:
  echo 's3cret-passphrase' | atelier user create --email ana@example.com --name Ana
  ATELIER_PASSWORD=... atelier user create --email ed@example.com --name Ed --role editor`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := models.Role(userRole)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q (want admin or editor)", userRole)
		}
		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users := store.NewUserStore(db)
		existing, err := users.FindByEmail(userEmail)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("a user with email %s already exists", existing.Email)
		}
		u, err := users.Create(userEmail, password, userName, role)
		if err != nil {
			return err
		}
		slog.Info("user created", "email", u.Email, "role", u.Role, "id", u.ID)
		return nil
	},
}

var userPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Set a new password for an account",
	Long: `Replaces the password of an existing account. The password is read
the same way as for "user create". Two-factor enrolment is kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withUser(func(users *store.UserStore, u *models.User) error {
			if err := users.SetPassword(u.ID, password); err != nil {
				return err
			}
			slog.Info("password updated", "email", u.Email)
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a back office account",
	Long: `Removes an account. Sessions it already holds stay valid until they
expire or are signed out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(users *store.UserStore, u *models.User) error {
			if err := users.Delete(u.ID); err != nil {
				return err
			}
			slog.Info("user deleted", "email", u.Email, "id", u.ID)
			return nil
		})
	},
}

// withUser resolves --email to an existing account and calls fn with it.
func withUser(fn func(*store.UserStore, *models.User) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	users := store.NewUserStore(db)
	u, err := users.FindByEmail(userEmail)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("no user with email %s", userEmail)
	}
	return fn(users, u)
}

func init() {
	userCreateCmd.Flags().StringVarP(&userEmail, "email", "e", "", "Email address used to sign in")
	userCreateCmd.Flags().StringVarP(&userName, "name", "n", "", "Display name")
	userCreateCmd.Flags().StringVarP(&userRole, "role", "r", string(models.RoleAdmin), "Role: admin or editor")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("name")

	for _, c := range []*cobra.Command{userPasswordCmd, userDeleteCmd} {
		c.Flags().StringVarP(&userEmail, "email", "e", "", "Email address of the account")
		c.MarkFlagRequired("email")
	}

	userCmd.AddCommand(userCreateCmd, userPasswordCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}

// minPasswordLen matches the back office add-user form.
const minPasswordLen = 8

func readPassword(stdin io.Reader) (string, error) {
	password := os.Getenv("ATELIER_PASSWORD")
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if len([]rune(password)) < minPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return password, nil
}
