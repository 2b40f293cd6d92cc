package querybuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithLogger sets the logger used for statement tracing.
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *Conn) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Conn owns a single database connection that is opened on first use with
// the credentials given to NewConn and reused for every later statement.
// It is safe for concurrent use.
type Conn struct {
	creds   Credentials
	dialect Dialect
	logger  *slog.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewConn records creds without connecting.
func NewConn(creds Credentials, opts ...ConnOption) (*Conn, error) {
	dialect, err := DialectFor(creds.Driver)
	if err != nil {
		return nil, err
	}

	c := &Conn{creds: creds, dialect: dialect, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// FromDB wraps an already opened handle.
func FromDB(db *sql.DB, dialect Dialect, opts ...ConnOption) *Conn {
	c := &Conn{dialect: dialect, logger: slog.Default(), db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Dialect returns the SQL flavour spoken by the connection.
func (c *Conn) Dialect() Dialect {
	return c.dialect
}

// DB returns the underlying handle, connecting if needed. A failed attempt is
// not cached; the next call tries again.
func (c *Conn) DB(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	db, err := sql.Open(c.dialect.Driver, c.creds.DSN(c.dialect))
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", c.dialect.Driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", c.dialect.Driver, err)
	}

	c.logger.Debug("database connected", "driver", c.dialect.Driver, "host", c.creds.Host, "database", c.creds.Name)
	c.db = db
	return db, nil
}

// PingContext connects if needed and verifies the connection is alive.
func (c *Conn) PingContext(ctx context.Context) error {
	db, err := c.DB(ctx)
	if err != nil {
		return storeError("ping", err)
	}
	return storeError("ping", db.PingContext(ctx))
}

// Exec runs a raw statement with bound args.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := c.DB(ctx)
	if err != nil {
		return nil, storeError("exec", err)
	}

	c.trace(ctx, query, args)
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("exec", err)
	}
	return res, nil
}

// Query runs a raw query with bound args. The caller closes the rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := c.DB(ctx)
	if err != nil {
		return nil, storeError("query", err)
	}

	c.trace(ctx, query, args)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("query", err)
	}
	return rows, nil
}

// Close releases the connection. On a Conn built by NewConn the next
// statement reconnects.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

func (c *Conn) trace(ctx context.Context, query string, args []any) {
	c.logger.DebugContext(ctx, "sql", "statement", query, "args", len(args))
}
