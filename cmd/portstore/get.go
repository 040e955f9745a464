package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safing/portstore/database"
)

func newGetCmd(a *app) *cobra.Command {
	var byID bool

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.find(args[0], byID)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no person %q", args[0])
			}
			if err != nil {
				return err
			}
			printPerson(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "look up by ID instead of name")
	return cmd
}
