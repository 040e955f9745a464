package migration

import "errors"

// Errors returned by the registry.
var (
	ErrInvalidVersion   = errors.New("invalid migration version")
	ErrDuplicateVersion = errors.New("duplicate migration version")
	ErrMissingFunc      = errors.New("migration has no function")
)

// DiagnosticStep describes a planned migration step.
type DiagnosticStep struct {
	Version     string
	Description string
}

// Diagnostics is returned when running migrations fails.
type Diagnostics struct {
	// Message holds a human readable message of the encountered
	// error.
	Message string
	// Wrapped must be set to the underlying error that was encountered
	// while preparing or executing migrations.
	Wrapped error
	// StartOfMigration is set to the version of the store before
	// any migrations are applied.
	StartOfMigration string
	// LastSuccessfulMigration is set to the version of the store
	// which has been applied successfully before the error happened.
	LastSuccessfulMigration string
	// TargetVersion is set to the version of the store that the
	// migration run aimed for, the last version added to the registry.
	TargetVersion string
	// ExecutionPlan is a list of migration steps that were planned to
	// be executed.
	ExecutionPlan []DiagnosticStep
	// FailedMigration is the description of the migration that has
	// failed.
	FailedMigration string
}

// Error returns a string representation of the migration error.
func (err *Diagnostics) Error() string {
	msg := ""
	if err.FailedMigration != "" {
		msg = err.FailedMigration + ": "
	}
	if err.Message != "" {
		msg += err.Message + ": "
	}
	msg += err.Wrapped.Error()
	return msg
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (err *Diagnostics) Unwrap() error {
	return err.Wrapped
}
