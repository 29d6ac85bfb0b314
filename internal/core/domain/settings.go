package domain

import (
	"os"
	"regexp"
	"time"
)

// DatabaseDriver identifies the SQL dialect of the shop database.
type DatabaseDriver string

// Supported drivers.
const (
	DriverMySQL    DatabaseDriver = "mysql"
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

// IsValid returns true if the driver is recognised.
func (d DatabaseDriver) IsValid() bool {
	switch d {
	case DriverMySQL, DriverSQLite, DriverPostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d DatabaseDriver) String() string {
	return string(d)
}

// Defaults taken from the production deployment.
const (
	DefaultStoreCode         = "MI-TIENDA-001"
	DefaultLanguage          = "es"
	DefaultCountry           = "MX"
	DefaultCurrency          = "MXN"
	DefaultTablePrefix       = "wp_"
	DefaultLocalSKUPrefix    = "PROD-LOC"
	DefaultPlaceholderImage  = "https://devlia.l3m.mx/wp-content/uploads/woocommerce-placeholder.png"
	DefaultPermalinkTemplate = "https://devlia.l3m.mx/producto/{sku}/"
	DefaultWatermarkFile     = "last_sync.json"
	DefaultLocalStockFile    = "local_stock.json"
)

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// ValidTablePrefix reports whether a prefix is safe to splice into identifiers.
func ValidTablePrefix(prefix string) bool {
	return tablePrefixPattern.MatchString(prefix)
}

// DatabaseSettings configures the shop database connection.
type DatabaseSettings struct {
	// Driver is the SQL dialect.
	Driver DatabaseDriver

	// DSN, when set, is used verbatim and the discrete fields are ignored.
	DSN string

	Host string

	// Port defaults per driver when zero.
	Port int

	User     string
	Password string

	// Name is the database name, or the file path for sqlite.
	Name string

	// TablePrefix is the WordPress table prefix.
	TablePrefix string
}

// MerchantSettings configures the remote catalog.
type MerchantSettings struct {
	// MerchantID is the Merchant Center account.
	MerchantID uint64

	// CredentialsFile is the service account JSON key.
	CredentialsFile string

	// Endpoint overrides the API base URL. Used against emulators.
	Endpoint string

	Language string
	Country  string
	Currency string

	// StoreCode is used for local items absent from the stock file.
	StoreCode string

	PlaceholderImage string

	// PermalinkTemplate builds links for items without a permalink. {sku} is substituted.
	PermalinkTemplate string

	// RequestsPerSecond paces remote calls. Zero disables pacing.
	RequestsPerSecond float64
}

// SyncSettings configures change detection and batching.
type SyncSettings struct {
	// BatchSize is the number of entries per remote batch, at most MaxBatchSize.
	BatchSize int

	// RetryCeiling excludes failed items once their error count reaches it.
	RetryCeiling int

	Classifier     ChannelClassifier
	LocalSKUPrefix string

	// SkipDeletion disables the deletion pass.
	SkipDeletion bool
}

// RetrySettings configures the retry executor.
type RetrySettings struct {
	UploadAttempts  int
	DeleteAttempts  int
	ConnectAttempts int

	// Base is raised to the attempt index to compute exponential waits.
	Base float64

	// Unit scales the exponential wait. One second in production.
	Unit time.Duration

	// RateLimitWait is the fixed wait after a 429 without Retry-After.
	RateLimitWait time.Duration
}

// FileSettings locates the state files kept next to the database.
type FileSettings struct {
	Watermark  string
	LocalStock string
}

// Settings is the complete run configuration.
type Settings struct {
	Database DatabaseSettings
	Merchant MerchantSettings
	Sync     SyncSettings
	Retry    RetrySettings
	Files    FileSettings
	Debug    bool
}

// DefaultSettings returns settings with production defaults.
func DefaultSettings() Settings {
	return Settings{
		Database: DatabaseSettings{
			Driver:      DriverMySQL,
			TablePrefix: DefaultTablePrefix,
		},
		Merchant: MerchantSettings{
			Language:          DefaultLanguage,
			Country:           DefaultCountry,
			Currency:          DefaultCurrency,
			StoreCode:         DefaultStoreCode,
			PlaceholderImage:  DefaultPlaceholderImage,
			PermalinkTemplate: DefaultPermalinkTemplate,
			RequestsPerSecond: 5,
		},
		Sync: SyncSettings{
			BatchSize:      MaxBatchSize,
			RetryCeiling:   5,
			Classifier:     ClassifyByVisibility,
			LocalSKUPrefix: DefaultLocalSKUPrefix,
		},
		Retry: RetrySettings{
			UploadAttempts:  5,
			DeleteAttempts:  3,
			ConnectAttempts: 5,
			Base:            2,
			Unit:            time.Second,
			RateLimitWait:   60 * time.Second,
		},
		Files: FileSettings{
			Watermark:  DefaultWatermarkFile,
			LocalStock: DefaultLocalStockFile,
		},
	}
}

// ValidateDatabase checks only what is needed to open the database.
func (s Settings) ValidateDatabase() error {
	problems := &ConfigurationError{}
	s.validateDatabase(problems)
	return problems.OrNil()
}

// Validate checks every setting a sync run needs and reports all problems at once.
func (s Settings) Validate() error {
	problems := &ConfigurationError{}
	s.validateDatabase(problems)

	if s.Merchant.MerchantID == 0 {
		problems.Add("merchant id is required")
	}
	if s.Merchant.CredentialsFile == "" {
		problems.Add("service account file is required")
	} else if _, err := os.Stat(s.Merchant.CredentialsFile); err != nil {
		problems.Add("service account file %q is not readable: %v", s.Merchant.CredentialsFile, err)
	}
	if s.Merchant.Language == "" || s.Merchant.Country == "" || s.Merchant.Currency == "" {
		problems.Add("language, country and currency are required")
	}
	if s.Merchant.StoreCode == "" {
		problems.Add("default store code is required")
	}

	if s.Sync.BatchSize < 1 || s.Sync.BatchSize > MaxBatchSize {
		problems.Add("batch size %d must be between 1 and %d", s.Sync.BatchSize, MaxBatchSize)
	}
	if s.Sync.RetryCeiling < 1 {
		problems.Add("retry ceiling must be positive")
	}
	if !s.Sync.Classifier.IsValid() {
		problems.Add("unknown channel classifier %q", s.Sync.Classifier)
	}
	if s.Sync.Classifier == ClassifyBySKUPrefix && s.Sync.LocalSKUPrefix == "" {
		problems.Add("local sku prefix is required by the sku_prefix classifier")
	}

	if s.Retry.UploadAttempts < 1 || s.Retry.DeleteAttempts < 1 || s.Retry.ConnectAttempts < 1 {
		problems.Add("retry attempt budgets must be positive")
	}
	if s.Retry.Base < 1 {
		problems.Add("retry base must be at least 1")
	}

	if s.Files.Watermark == "" {
		problems.Add("watermark file path is required")
	}
	return problems.OrNil()
}

func (s Settings) validateDatabase(problems *ConfigurationError) {
	db := s.Database
	if !db.Driver.IsValid() {
		problems.Add("unknown database driver %q", db.Driver)
	}
	if !ValidTablePrefix(db.TablePrefix) {
		problems.Add("table prefix %q may only contain letters, digits and underscores", db.TablePrefix)
	}
	if db.DSN != "" {
		return
	}
	if db.Name == "" {
		problems.Add("database name is required")
	}
	if db.Driver != DriverSQLite {
		if db.Host == "" {
			problems.Add("database host is required")
		}
		if db.User == "" {
			problems.Add("database user is required")
		}
	}
}
