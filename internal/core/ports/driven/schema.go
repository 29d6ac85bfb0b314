package driven

import "context"

// SchemaManager owns the tracking table and checks the source tables.
type SchemaManager interface {
	// Migrate applies pending tracking table migrations.
	Migrate(ctx context.Context) error

	// Check returns the names of required tables that are missing.
	Check(ctx context.Context) ([]string, error)
}
