package router

import "time"

// Config holds the transport defaults applied by New.
type Config struct {
	// Timeout bounds the time a request may spend in the handler.
	Timeout time.Duration
	// QuietdownRoutes lists exact paths excluded from request logging.
	QuietdownRoutes []string
	// HideHeaders lists request headers redacted in request logs.
	HideHeaders []string
	// DefaultHeaders are set on every response before the handler runs.
	DefaultHeaders map[string]string
	CORS           CORSConfig
}

// CORSConfig configures cross-origin handling. An empty Origins list
// disables the CORS middleware.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}
