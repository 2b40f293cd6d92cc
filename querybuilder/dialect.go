package querybuilder

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Dialect captures the differences between the supported drivers.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string
	// Numbered placeholders ($1, $2) instead of "?".
	Numbered bool
	// ReturningID reads generated keys with "RETURNING id" because the driver
	// does not implement LastInsertId.
	ReturningID bool
}

var (
	MySQL    = Dialect{Driver: "mysql"}
	Postgres = Dialect{Driver: "pgx", Numbered: true, ReturningID: true}
	SQLite   = Dialect{Driver: "sqlite"}
)

// DialectFor resolves a driver name as written in configuration.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mysql", "mariadb":
		return MySQL, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("querybuilder: unsupported driver %q", driver)
	}
}

// Placeholder returns the bind marker for the n-th argument, starting at 1.
func (d Dialect) Placeholder(n int) string {
	if d.Numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Credentials locate the database. For SQLite only Name is used and holds the
// file path or ":memory:".
type Credentials struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DSN renders the connection string for d.
func (c Credentials) DSN(d Dialect) string {
	switch d.Driver {
	case SQLite.Driver:
		return c.Name
	case Postgres.Driver:
		return c.postgresDSN()
	default:
		return c.mysqlDSN()
	}
}

func (c Credentials) mysqlDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(hostOrDefault(c.Host), strconv.Itoa(portOrDefault(c.Port, 3306)))
	cfg.DBName = c.Name
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// postgresDSN renders a postgres:// URL with escaped credentials.
func (c Credentials) postgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(hostOrDefault(c.Host), strconv.Itoa(portOrDefault(c.Port, 5432))),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}

	switch {
	case c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}

	return u.String()
}

func hostOrDefault(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}

func portOrDefault(port, fallback int) int {
	if port <= 0 {
		return fallback
	}
	return port
}
