package sqlstore

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// dialect captures what differs between the supported databases.
type dialect struct {
	driver domain.DatabaseDriver

	// sqlDriver is the name registered with database/sql.
	sqlDriver string

	// numbered placeholders ($1, $2...) instead of ?.
	numbered bool

	// tableExists counts tables with the bound name in the current schema.
	tableExists string
}

var dialects = map[domain.DatabaseDriver]dialect{
	domain.DriverMySQL: {
		driver:      domain.DriverMySQL,
		sqlDriver:   "mysql",
		tableExists: "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
	},
	domain.DriverPostgres: {
		driver:      domain.DriverPostgres,
		sqlDriver:   "pgx",
		numbered:    true,
		tableExists: "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?",
	},
	domain.DriverSQLite: {
		driver:      domain.DriverSQLite,
		sqlDriver:   "sqlite",
		tableExists: "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
	},
}

func dialectFor(driver domain.DatabaseDriver) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: database driver %q", domain.ErrInvalidInput, driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dsn builds the connection string for the dialect.
func (d dialect) dsn(s domain.DatabaseSettings) (string, error) {
	switch d.driver {
	case domain.DriverMySQL:
		return mysqlDSN(s)
	case domain.DriverPostgres:
		return postgresDSN(s), nil
	default:
		return sqliteDSN(s), nil
	}
}

// mysqlDSN always enables parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(s domain.DatabaseSettings) (string, error) {
	var cfg *mysql.Config
	if s.DSN != "" {
		parsed, err := mysql.ParseDSN(s.DSN)
		if err != nil {
			return "", fmt.Errorf("%w: parse mysql dsn: %w", domain.ErrInvalidInput, err)
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = s.User
		cfg.Passwd = s.Password
		cfg.Net = "tcp"
		port := s.Port
		if port == 0 {
			port = 3306
		}
		cfg.Addr = net.JoinHostPort(s.Host, strconv.Itoa(port))
		cfg.DBName = s.Name
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	return cfg.FormatDSN(), nil
}

func postgresDSN(s domain.DatabaseSettings) string {
	if s.DSN != "" {
		return s.DSN
	}
	port := s.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(port)),
		Path:   "/" + s.Name,
	}
	return u.String()
}

func sqliteDSN(s domain.DatabaseSettings) string {
	if s.DSN != "" {
		return s.DSN
	}
	return s.Name + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}
