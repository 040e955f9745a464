package migration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(applied *[]string, version string) MigrateFunc {
	return func(_ context.Context, _ string) error {
		*applied = append(*applied, version)
		return nil
	}
}

func TestMigrateInOrder(t *testing.T) {
	t.Parallel()

	var applied []string
	reg := New("test")
	require.NoError(t, reg.Add(
		Migration{Version: "v1.10.0", Description: "ten", MigrateFunc: recorder(&applied, "v1.10.0")},
		Migration{Version: "v1.2.0", Description: "two", MigrateFunc: recorder(&applied, "v1.2.0")},
		Migration{Version: "v1.0.0", Description: "initial", MigrateFunc: recorder(&applied, "v1.0.0")},
	))

	location := t.TempDir()
	require.NoError(t, reg.Migrate(context.Background(), location))
	assert.Equal(t, []string{"v1.0.0", "v1.2.0", "v1.10.0"}, applied)

	last, err := reg.LastApplied(location)
	require.NoError(t, err)
	assert.Equal(t, "v1.10.0", last)
	_, err = os.Stat(filepath.Join(location, StateFileName))
	require.NoError(t, err)

	// A second run is a no-op, also for a fresh registry reading the same state.
	require.NoError(t, reg.Migrate(context.Background(), location))
	assert.Len(t, applied, 3)

	var later []string
	next := New("test")
	require.NoError(t, next.Add(
		Migration{Version: "v1.0.0", Description: "initial", MigrateFunc: recorder(&later, "v1.0.0")},
		Migration{Version: "v2.0.0", Description: "two", MigrateFunc: recorder(&later, "v2.0.0")},
	))
	require.NoError(t, next.Migrate(context.Background(), location))
	assert.Equal(t, []string{"v2.0.0"}, later)
}

func TestMigrateInMemory(t *testing.T) {
	t.Parallel()

	var applied []string
	reg := New("test")
	require.NoError(t, reg.Add(Migration{Version: "1.0.0", Description: "initial", MigrateFunc: recorder(&applied, "1.0.0")}))

	require.NoError(t, reg.Migrate(context.Background(), ""))
	require.NoError(t, reg.Migrate(context.Background(), ""))
	assert.Equal(t, []string{"1.0.0"}, applied)
}

func TestMigrateFailure(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken")
	var applied []string
	reg := New("test")
	require.NoError(t, reg.Add(
		Migration{Version: "1.0.0", Description: "initial", MigrateFunc: recorder(&applied, "1.0.0")},
		Migration{Version: "1.1.0", Description: "add index", MigrateFunc: func(context.Context, string) error {
			return errBroken
		}},
		Migration{Version: "1.2.0", Description: "never", MigrateFunc: recorder(&applied, "1.2.0")},
	))

	location := t.TempDir()
	err := reg.Migrate(context.Background(), location)
	require.ErrorIs(t, err, errBroken)

	var diag *Diagnostics
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, "add index", diag.FailedMigration)
	assert.Equal(t, "1.0.0", diag.LastSuccessfulMigration)
	assert.Equal(t, "1.2.0", diag.TargetVersion)
	assert.Empty(t, diag.StartOfMigration)
	assert.Len(t, diag.ExecutionPlan, 3)
	assert.Equal(t, []string{"1.0.0"}, applied)

	last, err := reg.LastApplied(location)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", last)
}

func TestAddValidation(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, string) error { return nil }
	reg := New("test")
	require.NoError(t, reg.Add(Migration{Version: "1.0.0", MigrateFunc: noop}))

	err := reg.Add(
		Migration{Version: "not-a-version", MigrateFunc: noop},
		Migration{Version: "1.0.0", MigrateFunc: noop},
		Migration{Version: "1.1.0"},
		Migration{Version: "1.2.0", MigrateFunc: noop},
	)
	require.ErrorIs(t, err, ErrInvalidVersion)
	require.ErrorIs(t, err, ErrDuplicateVersion)
	require.ErrorIs(t, err, ErrMissingFunc)

	// valid entries of a partially failing call are still registered
	plan, target := reg.plan(nil)
	assert.Len(t, plan, 2)
	assert.Equal(t, "1.2.0", target)
}
