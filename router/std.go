package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"
)

// New returns a *http.ServeMux that serves apiHandle, usually a *Router,
// behind the configured transport middlewares.
func New(apiHandle http.Handler, opts ...Option) *http.ServeMux {
	if apiHandle == nil {
		panic("router: handler cannot be nil")
	}

	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	finalHandler := applyMiddlewares(apiHandle, settings.middlewareChain())
	mux := http.NewServeMux()
	mux.Handle("/", finalHandler)
	return mux
}

func applyMiddlewares(handler http.Handler, middlewares []Middleware) http.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		if middleware == nil {
			continue
		}
		handler = middleware(handler)
	}

	return handler
}

func oapiMiddleware(swagger *openapi3.T) Middleware {
	return func(next http.Handler) http.Handler {
		// Clear out the servers array in the OpenAPI document, that skips validating
		// that server names match. We don't know how this thing will be run.
		swagger.Servers = nil

		validatorOptions := &oapiMW.Options{
			Options: openapi3filter.Options{
				AuthenticationFunc: func(c context.Context, input *openapi3filter.AuthenticationInput) error {
					return nil
				},
			},
		}
		validated := oapiMW.OapiRequestValidatorWithOptions(swagger, validatorOptions)(next)

		// Requests the document does not describe go straight to the
		// dispatcher so its 404 and 405 fallbacks stay authoritative.
		documented, err := gorillamux.NewRouter(swagger)
		if err != nil {
			return validated
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, _, err := documented.FindRoute(r); err != nil {
				next.ServeHTTP(w, r)
				return
			}
			validated.ServeHTTP(w, r)
		})
	}
}

func loggingMiddleware(logger *slog.Logger, quietdownRoutes []string, hideHeaders []string) Middleware {
	logger.With(
		"quietdownRoutes", quietdownRoutes,
		"hideHeaders", hideHeaders,
	).Debug("request logging enabled")

	quietRoutesCopy := cloneStrings(quietdownRoutes)
	redactedCopy := cloneStrings(hideHeaders)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !shouldQuietRoute(r.URL.Path, quietRoutesCopy) {
				headers := cloneHeaders(r.Header)
				redactHeaders(headers, redactedCopy)

				attrs := []any{
					"path", r.URL.Path,
					"method", r.Method,
					"header", headers,
					"remoteAddr", r.RemoteAddr,
				}

				if r.ContentLength > 0 {
					attrs = append(attrs, "contentLength", r.ContentLength)
				}

				logger.With(attrs...).Debug("request")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware adds CORS headers based on the provided configuration.
func corsMiddleware(cfg CORSConfig) Middleware {
	headersCopy := cloneStrings(cfg.Headers)
	methodsCopy := cloneStrings(cfg.Methods)
	originsCopy := cloneStrings(cfg.Origins)

	return func(next http.Handler) http.Handler {
		if len(originsCopy) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowedOrigin(origin, originsCopy) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(methodsCopy, ","))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(headersCopy, ","))
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// defaultHeadersMiddleware sets fixed headers before the handler runs so the
// handler can still override them.
func defaultHeadersMiddleware(headers map[string]string) Middleware {
	headersCopy := cloneHeaderMap(headers)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for key, value := range headersCopy {
				w.Header().Set(key, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// timeoutMiddleware bounds each request with a context deadline. The
// response is passed through unbuffered; a handler that stops before writing
// anything once the deadline passed gets a 503.
func timeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := newResponseWriter(w)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if !ww.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				http.Error(w, "Timeout", http.StatusServiceUnavailable)
			}
		})
	}
}

func allowedOrigin(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}

	return false
}

func shouldQuietRoute(path string, quietdownRoutes []string) bool {
	for _, quietPath := range quietdownRoutes {
		if path == quietPath {
			return true
		}
	}

	return false
}

func cloneHeaders(src http.Header) http.Header {
	headers := make(http.Header, len(src))
	for k, v := range src {
		copied := make([]string, len(v))
		copy(copied, v)
		headers[k] = copied
	}

	return headers
}

func redactHeaders(headers http.Header, hideHeaders []string) {
	for _, header := range hideHeaders {
		canonical := http.CanonicalHeaderKey(header)
		values, exists := headers[canonical]
		if !exists {
			continue
		}

		redactedLen := 0
		for _, value := range values {
			redactedLen += len(value)
		}

		headers[canonical] = []string{fmt.Sprintf("[REDACTED - %d bytes]", redactedLen)}
	}
}
