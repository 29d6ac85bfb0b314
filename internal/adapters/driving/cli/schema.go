package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

var schemaCheckOnly bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the tracking table and check the shop tables",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaCheckOnly, "check-only", false, "report missing tables without creating any")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	settings, log, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := settings.ValidateDatabase(); err != nil {
		return err
	}

	ctx := cmd.Context()
	schema, closeFn, err := newSchemaManager(ctx, settings, log)
	if err != nil {
		return err
	}
	defer closeFn()

	if !schemaCheckOnly {
		if err := schema.Migrate(ctx); err != nil {
			return err
		}
		cmd.Println("Tracking table is up to date.")
	}

	missing, err := schema.Check(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &schemaError{missing: missing}
	}
	cmd.Println("All required tables are present.")
	return nil
}

// schemaError lists the missing tables.
type schemaError struct {
	missing []string
}

func (e *schemaError) Error() string {
	return "missing tables: " + strings.Join(e.missing, ", ")
}

func (e *schemaError) Unwrap() error {
	return domain.ErrSchemaMissing
}
