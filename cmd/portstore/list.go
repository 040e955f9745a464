package main

import (
	"github.com/spf13/cobra"

	"github.com/safing/portstore/database/query"
	"github.com/safing/portstore/person"
)

func newListCmd(a *app) *cobra.Command {
	var organization string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons, sorted by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			persons, err := person.Store().GetAll(func(q *query.Query) {
				if organization != "" {
					q.Where(query.Where("organization", query.SameAs, organization))
				}
				q.OrderBy("name").Limit(limit)
			}, a.m)
			if err != nil {
				return err
			}
			return printPersons(cmd.OutOrStdout(), persons)
		},
	}
	cmd.Flags().StringVar(&organization, "organization", "", "only list persons of this organization")
	cmd.Flags().IntVar(&limit, "limit", 0, "list at most this many persons")
	return cmd
}
