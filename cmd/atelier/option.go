// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"atelier/internal/models"
	"atelier/internal/store"
)

var optionCmd = &cobra.Command{
	Use:   "option",
	Short: "Manage custom size and finish options",
	Long: `Custom options are the sizes and finishes admins typed into the product
editor. They are offered to every admin next to the built-in values.`,
}

var optionListCmd = &cobra.Command{
	Use:       "list <size|finish>",
	Short:     "Print the custom values of an option set",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.OptionKindSize), string(models.OptionKindFinish)},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := optionKind(args[0])
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		values, err := store.NewOptionStore(db).Custom(kind)
		if err != nil {
			return err
		}
		printOptions(cmd.OutOrStdout(), values)
		return nil
	},
}

var optionRemoveCmd = &cobra.Command{
	Use:   "remove <size|finish> <value>",
	Short: "Remove a custom value from an option set",
	Long: `Removes a custom value so the editor stops offering it. Products that
already carry the value keep it. Built-in values cannot be removed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := optionKind(args[0])
		if err != nil {
			return err
		}
		value := args[1]
		if slices.Contains(kind.Defaults(), value) {
			return fmt.Errorf("%q is a built-in %s and cannot be removed", value, kind)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.NewOptionStore(db).Remove(kind, value); err != nil {
			return err
		}
		slog.Info("option removed", "kind", kind, "value", value)
		return nil
	},
}

func init() {
	optionCmd.AddCommand(optionListCmd, optionRemoveCmd)
	rootCmd.AddCommand(optionCmd)
}

func optionKind(arg string) (models.OptionKind, error) {
	kind := models.OptionKind(arg)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown option set %q (want size or finish)", arg)
	}
	return kind, nil
}

func printOptions(w io.Writer, values []models.OptionValue) {
	if len(values) == 0 {
		fmt.Fprintln(w, "no custom values")
		return
	}
	for _, v := range values {
		fmt.Fprintf(w, "%s\t%s\n", v.Value, v.CreatedAt.Format("2006-01-02"))
	}
}
