package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/config/file"
	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/merchant"
	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/statefile"
	"github.com/omarcs/lia-woocommerce/internal/adapters/driven/storage/sqlstore"
	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driving"
	"github.com/omarcs/lia-woocommerce/internal/core/services"
	"github.com/omarcs/lia-woocommerce/internal/logger"
)

// Factories are package variables so command tests can swap them.
var (
	newSettingsLoader = newFileSettingsLoader
	newPipeline       = buildPipeline
	newStatusReporter = buildStatusReporter
	newSchemaManager  = buildSchemaManager
)

func newFileSettingsLoader(path string) (driven.SettingsLoader, error) {
	return file.NewConfigStore(path)
}

// resolveSettings loads settings, applies the persistent flags and builds
// the logger every command writes to.
func resolveSettings(cmd *cobra.Command) (domain.Settings, *logger.Logger, error) {
	loader, err := newSettingsLoader(configPath)
	if err != nil {
		return domain.Settings{}, nil, err
	}
	settings, err := loader.Load()
	if err != nil {
		return settings, nil, err
	}
	if debugMode {
		settings.Debug = true
	}
	return settings, logger.New(cmd.ErrOrStderr(), settings.Debug), nil
}

// connectDatabase opens the shop database, retrying while it is unreachable.
// Malformed settings are not retried and surface as a configuration error.
func connectDatabase(ctx context.Context, s domain.Settings, retry *services.RetryExecutor) (*sqlstore.Store, error) {
	out := services.Execute(ctx, retry, "connect database", s.Retry.ConnectAttempts,
		func(ctx context.Context) domain.Outcome[*sqlstore.Store] {
			store, err := sqlstore.Open(ctx, s.Database)
			if err != nil {
				return domain.FailureFrom[*sqlstore.Store](err)
			}
			return domain.Success(store)
		})
	if !out.OK() {
		err := out.Err()
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, &domain.ConfigurationError{Problems: []string{
				fmt.Sprintf("database settings rejected after %d attempt(s): %v", out.Attempts(), err),
			}}
		}
		if !errors.Is(err, domain.ErrDatabaseUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
		}
		return nil, fmt.Errorf("connect database after %d attempt(s): %w", out.Attempts(), err)
	}
	return out.Value(), nil
}

// connectRemote creates the merchant client, retrying initialisation.
func connectRemote(ctx context.Context, s domain.Settings, retry *services.RetryExecutor, log *logger.Logger) (*merchant.Client, error) {
	out := services.Execute(ctx, retry, "init merchant client", s.Retry.ConnectAttempts,
		func(ctx context.Context) domain.Outcome[*merchant.Client] {
			client, err := merchant.New(ctx, s.Merchant, log)
			if err != nil {
				return domain.FailureFrom[*merchant.Client](err)
			}
			return domain.Success(client)
		})
	if !out.OK() {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, out.Err())
	}
	return out.Value(), nil
}

// ensureSchema creates the tracking table when needed and checks the
// shop tables are present.
func ensureSchema(ctx context.Context, schema driven.SchemaManager) error {
	if err := schema.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate tracking table: %w", err)
	}
	missing, err := schema.Check(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrSchemaMissing, strings.Join(missing, ", "))
	}
	return nil
}

func buildPipeline(ctx context.Context, s domain.Settings, log *logger.Logger) (driving.Pipeline, func(), error) {
	retry := services.NewRetryExecutor(services.RetryPolicyFrom(s.Retry), log)

	store, err := connectDatabase(ctx, s, retry)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureSchema(ctx, store.SchemaManager()); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	remote, err := connectRemote(ctx, s, retry, log)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	deps := services.PipelineDeps{
		Catalog:    store.CatalogReader(),
		Records:    store.SyncRecordStore(),
		Remote:     remote,
		Watermarks: statefile.NewWatermarkStore(s.Files.Watermark),
	}
	if s.Files.LocalStock != "" {
		deps.Inventory = statefile.NewInventoryFile(s.Files.LocalStock, log)
	}
	closeFn := func() { _ = store.Close() }
	return services.NewPipeline(deps, s, retry, log), closeFn, nil
}

func buildStatusReporter(ctx context.Context, s domain.Settings, log *logger.Logger) (driving.StatusReporter, func(), error) {
	retry := services.NewRetryExecutor(services.RetryPolicyFrom(s.Retry), log)
	store, err := connectDatabase(ctx, s, retry)
	if err != nil {
		return nil, nil, err
	}
	status := services.NewStatusService(store.SyncRecordStore(), statefile.NewWatermarkStore(s.Files.Watermark))
	return status, func() { _ = store.Close() }, nil
}

func buildSchemaManager(ctx context.Context, s domain.Settings, log *logger.Logger) (driven.SchemaManager, func(), error) {
	retry := services.NewRetryExecutor(services.RetryPolicyFrom(s.Retry), log)
	store, err := connectDatabase(ctx, s, retry)
	if err != nil {
		return nil, nil, err
	}
	return store.SchemaManager(), func() { _ = store.Close() }, nil
}
