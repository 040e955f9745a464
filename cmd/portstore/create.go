package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safing/portstore/person"
)

func newCreateCmd(a *app) *cobra.Command {
	var profession, organization, notes string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := person.Create(func(p *person.Person) {
				p.Name = args[0]
				p.Profession = profession
				p.Organization = organization
				p.Notes = notes
			}, a.m)
			if err != nil {
				return fmt.Errorf("failed to create person: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", args[0], p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&profession, "profession", "", "profession of the person")
	cmd.Flags().StringVar(&organization, "organization", "", "organization of the person")
	cmd.Flags().StringVar(&notes, "notes", "", "notes about the person")
	return cmd
}
