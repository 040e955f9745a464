package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/safing/portstore/person"
)

func newImportCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create persons from a file",
		Long: `Create persons from a file with one person per line:

  name;profession;organization;notes

Only the name is required. Empty lines and lines starting with # are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			var g errgroup.Group
			g.SetLimit(max(workers, 1))
			for _, fields := range entries {
				g.Go(func() error {
					_, err := person.Create(func(p *person.Person) {
						p.Name = fields[0]
						p.Profession = fields[1]
						p.Organization = fields[2]
						p.Notes = fields[3]
					}, a.m)
					if err != nil {
						return fmt.Errorf("failed to import %s: %w", fields[0], err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d persons\n", len(entries))
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent imports")
	return cmd
}

func readImportFile(path string) ([][4]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var entries [][4]string
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var fields [4]string
		for i, field := range strings.SplitN(line, ";", 4) {
			fields[i] = strings.TrimSpace(field)
		}
		if fields[0] == "" {
			return nil, fmt.Errorf("%s:%d: missing name", path, lineNo)
		}
		entries = append(entries, fields)
	}
	return entries, scanner.Err()
}
