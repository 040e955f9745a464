// Package main is the entry point for the portstore CLI, a small address
// book of persons kept in a portstore database.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/safing/portstore/config"
	"github.com/safing/portstore/database"
	"github.com/safing/portstore/info"
	"github.com/safing/portstore/log"
)

// Version is set at build time via ldflags.
var Version = ""

func main() {
	info.Set("portstore", Version)
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the CLI with the given arguments. The store is closed even
// if the command fails.
func run(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if closeErr := a.close(stderr); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close store: %w", closeErr))
	}
	return err
}

type app struct {
	configPath string
	storeName  string
	dataRoot   string
	inMemory   bool
	metrics    bool

	m *database.Manager
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portstore",
		Short: "portstore - manage persons in a portstore database",
		Long: `portstore manages a small address book of persons.

The store is configured by a YAML file (--config) and PORTSTORE_*
environment variables; the flags below take precedence over both.`,
		Version:           info.Version(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(info.FullVersion() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to the YAML config file")
	flags.StringVar(&a.storeName, "store", "", "name of the store")
	flags.StringVar(&a.dataRoot, "data", "", "data root directory")
	flags.BoolVar(&a.inMemory, "memory", false, "use an in-memory store")
	flags.BoolVar(&a.metrics, "metrics", false, "print store metrics to stderr when done")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newTruncateCmd(a),
		newImportCmd(a),
	)
	return rootCmd
}

// open loads the configuration and opens the store.
func (a *app) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storeName != "" {
		cfg.Store.Name = a.storeName
	}
	if a.dataRoot != "" {
		cfg.Store.DataRoot = a.dataRoot
	}
	if a.inMemory {
		cfg.Store.InMemory = true
	}

	log.SetConsole(cmd.ErrOrStderr(), false)
	if err := cfg.ApplyLogging(); err != nil {
		return err
	}
	if err := log.Start(); err != nil && !errors.Is(err, log.ErrAlreadyStarted) {
		return err
	}

	opts, err := cfg.DatabaseOptions()
	if err != nil {
		return err
	}
	a.m, err = database.New(opts)
	if err != nil {
		log.Shutdown()
		return err
	}
	return nil
}

func (a *app) close(w io.Writer) error {
	defer log.Shutdown()

	if a.m == nil {
		return nil
	}
	m := a.m
	a.m = nil

	if a.metrics {
		m.WritePrometheus(w)
	}
	return m.Close()
}
