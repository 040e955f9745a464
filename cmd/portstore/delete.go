package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safing/portstore/database"
	"github.com/safing/portstore/person"
)

func newDeleteCmd(a *app) *cobra.Command {
	var byID bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.find(args[0], byID)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no person %q", args[0])
			}
			if err != nil {
				return err
			}

			if err := p.Delete(a.m); err != nil {
				return fmt.Errorf("failed to delete person: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "look up by ID instead of name")
	return cmd
}

func newTruncateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "truncate",
		Short: "Delete all persons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := person.Count(a.m)
			if err != nil {
				return err
			}
			if err := person.DeleteAll(a.m); err != nil {
				return fmt.Errorf("failed to delete persons: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d persons\n", count)
			return nil
		},
	}
}
