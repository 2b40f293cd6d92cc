package probe

import (
	"context"
	"fmt"
)

// Func reports an unavailable dependency by returning an error.
type Func func(ctx context.Context) error

// PingFunc is any check with the same shape as Func, such as a blob store's
// Ping method.
type PingFunc func(ctx context.Context) error

// DBPinger is satisfied by *sql.DB and *querybuilder.Conn.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// NewPingProbe names fn so failures read "<name> probe failed: ...".
func NewPingProbe(name string, fn PingFunc) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return nilComponentError(name, "ping function")
		}

		if err := fn(contextOrBackground(ctx)); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// NewDBPingProbe pings db. A lazily connected querybuilder.Conn opens its
// connection on the first readiness check.
func NewDBPingProbe(name string, db DBPinger) Func {
	if db == nil {
		return NewPingProbe(name, nil)
	}
	return NewPingProbe(name, db.PingContext)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func nilComponentError(name, component string) error {
	return fmt.Errorf("%s probe: %s is nil", name, component)
}
