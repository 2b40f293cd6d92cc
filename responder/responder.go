package responder

import (
	"log/slog"
	"net/http"
)

const (
	jsonContentType = "application/json"

	// TraceHeader carries the correlation id attached to every error response.
	TraceHeader = "X-Trace-Id"
)

// ErrorClassifierFunc inspects an error and returns the HTTP status that should
// be used for the response. The boolean indicates whether the error was
// classified and prevents the generic internal server handler from running.
type ErrorClassifierFunc func(err error) (status int, handled bool)

// ResponderOption follows the functional options pattern used by NewResponder
// to configure optional collaborators.
type ResponderOption func(*Responder)

type statusMeta struct {
	logLevel slog.Level
	logMsg   string
}

// StatusMetadata allows callers to customise how particular HTTP status codes
// are logged when an error response is written.
type StatusMetadata struct {
	LogLevel slog.Level
	LogMsg   string
}

// Responder centralises error handling, JSON rendering, and logging for HTTP
// handlers. Error payloads use the {"error": "..."} envelope and every error
// response carries a correlation identifier in the X-Trace-Id header.
type Responder struct {
	log             *slog.Logger
	statusMetadata  map[int]statusMeta
	errorClassifier ErrorClassifierFunc
}

// NewResponder constructs a Responder with default status metadata and the
// global slog logger.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		log:            slog.Default(),
		statusMetadata: defaultStatusMetadata(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// WithLogger injects a custom slog logger for error reporting.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithErrorClassifier installs a classifier used by HandleErrors to derive the
// HTTP status code from returned errors.
func WithErrorClassifier(classifier ErrorClassifierFunc) ResponderOption {
	return func(r *Responder) {
		r.errorClassifier = classifier
	}
}

// WithStatusMetadata overrides the log level and message used for a specific
// HTTP status code.
func WithStatusMetadata(status int, meta StatusMetadata) ResponderOption {
	return func(r *Responder) {
		if r.statusMetadata == nil {
			r.statusMetadata = make(map[int]statusMeta)
		}
		r.statusMetadata[status] = normalizeStatusMeta(status, statusMeta{
			logLevel: meta.LogLevel,
			logMsg:   meta.LogMsg,
		})
	}
}

// Logger returns the slog logger used internally by the responder.
func (r *Responder) Logger() *slog.Logger {
	return r.logger()
}

func (r *Responder) logger() *slog.Logger {
	if r == nil || r.log == nil {
		return slog.Default()
	}
	return r.log
}

func (r *Responder) classifyError(err error) (int, bool) {
	if r == nil || r.errorClassifier == nil {
		return 0, false
	}
	return r.errorClassifier(err)
}

func (r *Responder) statusMetaFor(status int) statusMeta {
	var meta statusMeta
	if r != nil {
		meta = r.statusMetadata[status]
	}
	return normalizeStatusMeta(status, meta)
}

func normalizeStatusMeta(status int, meta statusMeta) statusMeta {
	if meta.logLevel == 0 && status >= http.StatusInternalServerError {
		meta.logLevel = slog.LevelError
	}
	if meta.logMsg == "" {
		meta.logMsg = http.StatusText(status)
	}
	return meta
}

func defaultStatusMetadata() map[int]statusMeta {
	return map[int]statusMeta{
		http.StatusInternalServerError: {logLevel: slog.LevelError, logMsg: "Internal Server Error"},
		http.StatusServiceUnavailable:  {logLevel: slog.LevelError, logMsg: "Service Unavailable"},
		http.StatusBadRequest:          {logLevel: slog.LevelWarn, logMsg: "Bad Request"},
		http.StatusNotFound:            {logLevel: slog.LevelWarn, logMsg: "Not Found"},
		http.StatusMethodNotAllowed:    {logLevel: slog.LevelWarn, logMsg: "Method Not Allowed"},
	}
}
