package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safing/portstore/database"
	"github.com/safing/portstore/person"
)

func newRenameCmd(a *app) *cobra.Command {
	var byID bool

	cmd := &cobra.Command{
		Use:   "rename <name> <new name>",
		Short: "Rename a person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.find(args[0], byID)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no person %q", args[0])
			}
			if err != nil {
				return err
			}

			if err := p.SaveChanges(func(p *person.Person) {
				p.Name = args[1]
			}, a.m); err != nil {
				return fmt.Errorf("failed to rename person: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "look up by ID instead of name")
	return cmd
}
