package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"

	"github.com/safing/portstore/log"
	"github.com/safing/portstore/utils"
)

// StateFileName is the name of the file holding the last applied version.
const StateFileName = "migrations.json"

// MigrateFunc is called to execute a migration step against the store at location.
// In-memory stores pass an empty location.
type MigrateFunc func(ctx context.Context, location string) error

// Migration represents a registered data-migration step.
type Migration struct {
	// Description provides a short human-readable description of the
	// migration.
	Description string
	// Version is the semantic version of the store after this
	// migration has been applied.
	Version string
	// MigrateFunc is called to actually perform the migration.
	MigrateFunc MigrateFunc
}

type state struct {
	Version string    `json:"version"`
	Applied time.Time `json:"applied"`
}

// Registry holds migration steps and runs the ones a store has not seen yet.
type Registry struct {
	name string

	lock       sync.Mutex
	migrations []Migration
	memState   string // last applied version of in-memory stores
}

// New creates a new migration registry.
func New(name string) *Registry {
	return &Registry{
		name: name,
	}
}

// Add adds one or more migrations to reg. All problems are reported together.
func (reg *Registry) Add(migrations ...Migration) error {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	var errs *multierror.Error
	seen := make(map[string]struct{}, len(reg.migrations))
	for _, m := range reg.migrations {
		seen[version.Must(version.NewSemver(m.Version)).String()] = struct{}{}
	}

	for _, m := range migrations {
		v, err := version.NewSemver(m.Version)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w %q (%s): %w", ErrInvalidVersion, m.Version, m.Description, err))
			continue
		}
		if m.MigrateFunc == nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s (%s)", ErrMissingFunc, m.Version, m.Description))
			continue
		}
		if _, ok := seen[v.String()]; ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s (%s)", ErrDuplicateVersion, m.Version, m.Description))
			continue
		}
		seen[v.String()] = struct{}{}
		reg.migrations = append(reg.migrations, m)
	}

	return errs.ErrorOrNil()
}

// Migrate runs all migrations newer than the last applied one, in version order.
func (reg *Registry) Migrate(ctx context.Context, location string) error {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	start, err := reg.loadState(location)
	if err != nil {
		return &Diagnostics{
			Message: "failed to load migration state",
			Wrapped: err,
		}
	}

	var startOfMigration *version.Version
	if start != "" {
		startOfMigration, err = version.NewSemver(start)
		if err != nil {
			return &Diagnostics{
				Message:          "failed to parse last applied version",
				Wrapped:          err,
				StartOfMigration: start,
			}
		}
	}

	plan, target := reg.plan(startOfMigration)
	if len(plan) == 0 {
		return nil
	}

	diag := &Diagnostics{
		StartOfMigration: start,
		TargetVersion:    target,
	}
	for _, m := range plan {
		diag.ExecutionPlan = append(diag.ExecutionPlan, DiagnosticStep{
			Version:     m.Version,
			Description: m.Description,
		})
	}

	lastSuccess := start
	for _, m := range plan {
		log.Infof("migration: %s: applying %s (%s)", reg.name, m.Version, m.Description)

		if err := m.MigrateFunc(ctx, location); err != nil {
			diag.Wrapped = err
			diag.FailedMigration = m.Description
			diag.LastSuccessfulMigration = lastSuccess
			return diag
		}

		lastSuccess = m.Version
		if err := reg.saveState(location, lastSuccess); err != nil {
			diag.Message = "failed to persist migration state"
			diag.Wrapped = err
			diag.LastSuccessfulMigration = lastSuccess
			return diag
		}
	}

	log.Infof("migration: %s: store is now at version %s", reg.name, lastSuccess)
	return nil
}

// plan returns the sorted migrations after start and the target version.
func (reg *Registry) plan(start *version.Version) (plan []Migration, target string) {
	sorted := make([]Migration, len(reg.migrations))
	copy(sorted, reg.migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return version.Must(version.NewSemver(sorted[i].Version)).LessThan(
			version.Must(version.NewSemver(sorted[j].Version)),
		)
	})

	for _, m := range sorted {
		target = m.Version
		if start != nil && !version.Must(version.NewSemver(m.Version)).GreaterThan(start) {
			continue
		}
		plan = append(plan, m)
	}
	return plan, target
}

// LastApplied returns the version the store at location was last migrated to.
func (reg *Registry) LastApplied(location string) (string, error) {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	return reg.loadState(location)
}

func (reg *Registry) loadState(location string) (string, error) {
	if location == "" {
		return reg.memState, nil
	}

	data, err := os.ReadFile(filepath.Join(location, StateFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", StateFileName, err)
	}
	return s.Version, nil
}

func (reg *Registry) saveState(location, applied string) error {
	if location == "" {
		reg.memState = applied
		return nil
	}

	data, err := json.MarshalIndent(state{
		Version: applied,
		Applied: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(filepath.Join(location, StateFileName), data, 0o600)
}
