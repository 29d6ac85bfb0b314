package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.SettingsLoader = (*ConfigStore)(nil)

// fileConfig is the TOML layout. Pointers distinguish unset from zero.
type fileConfig struct {
	Debug    bool           `toml:"debug"`
	Database databaseConfig `toml:"database"`
	Merchant merchantConfig `toml:"merchant"`
	Sync     syncConfig     `toml:"sync"`
	Retry    retryConfig    `toml:"retry"`
	Files    filesConfig    `toml:"files"`
}

type databaseConfig struct {
	Driver      string  `toml:"driver"`
	DSN         string  `toml:"dsn"`
	Host        string  `toml:"host"`
	Port        int     `toml:"port"`
	User        string  `toml:"user"`
	Password    string  `toml:"password"`
	Name        string  `toml:"name"`
	TablePrefix *string `toml:"table_prefix"`
}

type merchantConfig struct {
	MerchantID         uint64   `toml:"merchant_id"`
	ServiceAccountFile string   `toml:"service_account_file"`
	Endpoint           string   `toml:"endpoint"`
	Language           string   `toml:"language"`
	Country            string   `toml:"country"`
	Currency           string   `toml:"currency"`
	StoreCode          string   `toml:"store_code"`
	PlaceholderImage   string   `toml:"placeholder_image"`
	PermalinkTemplate  string   `toml:"permalink_template"`
	RequestsPerSecond  *float64 `toml:"requests_per_second"`
}

type syncConfig struct {
	BatchSize      *int   `toml:"batch_size"`
	RetryCeiling   *int   `toml:"retry_ceiling"`
	Classifier     string `toml:"classifier"`
	LocalSKUPrefix string `toml:"local_sku_prefix"`
	SkipDeletion   bool   `toml:"skip_deletion"`
}

type retryConfig struct {
	UploadAttempts       *int     `toml:"upload_attempts"`
	DeleteAttempts       *int     `toml:"delete_attempts"`
	ConnectAttempts      *int     `toml:"connect_attempts"`
	Base                 *float64 `toml:"base"`
	UnitSeconds          *float64 `toml:"unit_seconds"`
	RateLimitWaitSeconds *float64 `toml:"rate_limit_wait_seconds"`
}

type filesConfig struct {
	Watermark  string `toml:"watermark"`
	LocalStock string `toml:"local_stock"`
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// ConfigStore resolves settings from defaults, a TOML file and the
// environment, in that order of precedence from lowest to highest.
type ConfigStore struct {
	filePath string
	lookup   LookupEnv
}

// NewConfigStore creates a store for the file at path.
// If path is empty, defaults to ~/.lia-sync/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".lia-sync", "config.toml")
	}
	return &ConfigStore{filePath: path, lookup: os.LookupEnv}, nil
}

// WithEnv replaces the environment lookup.
func (s *ConfigStore) WithEnv(lookup LookupEnv) *ConfigStore {
	s.lookup = lookup
	return s
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load returns the resolved settings. A missing file is not an error.
// Malformed values are reported together as a domain.ConfigurationError.
func (s *ConfigStore) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()
	problems := &domain.ConfigurationError{}

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return settings, fmt.Errorf("reading config %s: %w", s.filePath, err)
	default:
		var cfg fileConfig
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				for _, e := range strict.Errors {
					problems.Add("config %s: unknown key %q", s.filePath, strings.Join(e.Key(), "."))
				}
			} else {
				problems.Add("config %s: %v", s.filePath, err)
			}
			return settings, problems.OrNil()
		}
		applyFile(&settings, cfg)
	}

	s.applyEnv(&settings, problems)
	return settings, problems.OrNil()
}

func applyFile(s *domain.Settings, cfg fileConfig) {
	s.Debug = cfg.Debug

	db := cfg.Database
	setString(&s.Database.Driver, domain.DatabaseDriver(db.Driver))
	setString(&s.Database.DSN, db.DSN)
	setString(&s.Database.Host, db.Host)
	if db.Port != 0 {
		s.Database.Port = db.Port
	}
	setString(&s.Database.User, db.User)
	setString(&s.Database.Password, db.Password)
	setString(&s.Database.Name, db.Name)
	if db.TablePrefix != nil {
		s.Database.TablePrefix = *db.TablePrefix
	}

	m := cfg.Merchant
	if m.MerchantID != 0 {
		s.Merchant.MerchantID = m.MerchantID
	}
	setString(&s.Merchant.CredentialsFile, m.ServiceAccountFile)
	setString(&s.Merchant.Endpoint, m.Endpoint)
	setString(&s.Merchant.Language, m.Language)
	setString(&s.Merchant.Country, m.Country)
	setString(&s.Merchant.Currency, m.Currency)
	setString(&s.Merchant.StoreCode, m.StoreCode)
	setString(&s.Merchant.PlaceholderImage, m.PlaceholderImage)
	setString(&s.Merchant.PermalinkTemplate, m.PermalinkTemplate)
	setValue(&s.Merchant.RequestsPerSecond, m.RequestsPerSecond)

	sy := cfg.Sync
	setValue(&s.Sync.BatchSize, sy.BatchSize)
	setValue(&s.Sync.RetryCeiling, sy.RetryCeiling)
	setString(&s.Sync.Classifier, domain.ChannelClassifier(sy.Classifier))
	setString(&s.Sync.LocalSKUPrefix, sy.LocalSKUPrefix)
	s.Sync.SkipDeletion = s.Sync.SkipDeletion || sy.SkipDeletion

	r := cfg.Retry
	setValue(&s.Retry.UploadAttempts, r.UploadAttempts)
	setValue(&s.Retry.DeleteAttempts, r.DeleteAttempts)
	setValue(&s.Retry.ConnectAttempts, r.ConnectAttempts)
	setValue(&s.Retry.Base, r.Base)
	if r.UnitSeconds != nil {
		s.Retry.Unit = seconds(*r.UnitSeconds)
	}
	if r.RateLimitWaitSeconds != nil {
		s.Retry.RateLimitWait = seconds(*r.RateLimitWaitSeconds)
	}

	setString(&s.Files.Watermark, cfg.Files.Watermark)
	setString(&s.Files.LocalStock, cfg.Files.LocalStock)
}

// applyEnv overlays the deployment environment variables.
func (s *ConfigStore) applyEnv(settings *domain.Settings, problems *domain.ConfigurationError) {
	env := func(key string) (string, bool) {
		v, ok := s.lookup(key)
		return v, ok && v != ""
	}

	if v, ok := env("DB_DRIVER"); ok {
		settings.Database.Driver = domain.DatabaseDriver(v)
	}
	if v, ok := env("DB_DSN"); ok {
		settings.Database.DSN = v
	}
	if v, ok := env("DB_HOST"); ok {
		settings.Database.Host = v
	}
	if v, ok := env("DB_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			problems.Add("DB_PORT %q is not a valid port", v)
		} else {
			settings.Database.Port = port
		}
	}
	if v, ok := env("DB_USER"); ok {
		settings.Database.User = v
	}
	if v, ok := s.lookup("DB_PASSWORD"); ok {
		settings.Database.Password = v
	}
	if v, ok := env("DB_NAME"); ok {
		settings.Database.Name = v
	}
	if v, ok := env("MERCHANT_ID"); ok {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			problems.Add("MERCHANT_ID %q is not a number", v)
		} else {
			settings.Merchant.MerchantID = id
		}
	}
	if v, ok := env("STORE_CODE"); ok {
		settings.Merchant.StoreCode = v
	}
	if v, ok := env("SERVICE_ACCOUNT_FILE_PATH"); ok {
		settings.Merchant.CredentialsFile = v
	}
	if v, ok := env("LAST_SYNC_FILE"); ok {
		settings.Files.Watermark = v
	}
	if v, ok := env("LOCAL_STOCK_FILE"); ok {
		settings.Files.LocalStock = v
	}
}

func setString[T ~string](dst *T, v T) {
	if v != "" {
		*dst = v
	}
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
