package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/ssl/cleanshot-cloud/responder"
)

// AnyMethod registers a route for every request method.
const AnyMethod = "*"

// HandlerFunc serves a matched request. A returned error is rendered as a 500
// response carrying the error message, unless the handler already wrote one.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params Params) error

// Wrap adapts a plain http.Handler to a HandlerFunc that never fails.
func Wrap(h http.Handler) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ Params) error {
		h.ServeHTTP(w, r)
		return nil
	}
}

// Route is a single registration. It is immutable once added.
type Route struct {
	method  string
	pattern *Pattern
	handler HandlerFunc
}

// Method returns the uppercased method or AnyMethod.
func (rt *Route) Method() string {
	return rt.method
}

// Pattern returns the compiled template.
func (rt *Route) Pattern() *Pattern {
	return rt.pattern
}

// Match is the outcome of Dispatch. Route is nil unless Status is 200.
type Match struct {
	Status int
	Route  *Route
	Params Params
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// Router holds routes in registration order. Register every route before
// serving; the route list is read without locking.
type Router struct {
	routes    []*Route
	responder *responder.Responder
	logger    *slog.Logger
}

// NewRouter returns an empty Router.
func NewRouter(opts ...RouterOption) *Router {
	rt := &Router{
		responder: responder.NewResponder(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(rt)
		}
	}

	return rt
}

// WithResponder sets the responder used for the 404, 405 and 500 fallbacks.
func WithResponder(r *responder.Responder) RouterOption {
	return func(rt *Router) {
		if r != nil {
			rt.responder = r
		}
	}
}

// WithRouterLogger sets the logger used for recovered panics.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// Handle registers handler for method and template. Method is uppercased;
// AnyMethod matches every request method.
func (rt *Router) Handle(method, template string, handler HandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("router: nil handler for %s %s", method, template)
	}

	pattern, err := CompilePattern(template)
	if err != nil {
		return err
	}

	rt.routes = append(rt.routes, &Route{
		method:  normalizeMethod(method),
		pattern: pattern,
		handler: handler,
	})
	return nil
}

// Route is like Handle but panics when the template cannot be compiled.
func (rt *Router) Route(method, template string, handler HandlerFunc) {
	if err := rt.Handle(method, template, handler); err != nil {
		panic(err.Error())
	}
}

// Get registers a GET route.
func (rt *Router) Get(template string, handler HandlerFunc) {
	rt.Route(http.MethodGet, template, handler)
}

// Post registers a POST route.
func (rt *Router) Post(template string, handler HandlerFunc) {
	rt.Route(http.MethodPost, template, handler)
}

// Put registers a PUT route.
func (rt *Router) Put(template string, handler HandlerFunc) {
	rt.Route(http.MethodPut, template, handler)
}

// Patch registers a PATCH route.
func (rt *Router) Patch(template string, handler HandlerFunc) {
	rt.Route(http.MethodPatch, template, handler)
}

// Delete registers a DELETE route.
func (rt *Router) Delete(template string, handler HandlerFunc) {
	rt.Route(http.MethodDelete, template, handler)
}

// Any registers a route for every method.
func (rt *Router) Any(template string, handler HandlerFunc) {
	rt.Route(AnyMethod, template, handler)
}

// Routes returns a copy of the registrations in order.
func (rt *Router) Routes() []*Route {
	routes := make([]*Route, len(rt.routes))
	copy(routes, rt.routes)
	return routes
}

// Dispatch selects the route for method and path.
//
// Once any route accepts the method, a miss reports 405 even when a route
// for another method would have matched the path.
func (rt *Router) Dispatch(method, path string) Match {
	method = strings.ToUpper(method)
	methodCandidate := false

	for _, route := range rt.routes {
		if route.method != AnyMethod && route.method != method {
			continue
		}

		if params, ok := route.pattern.Match(path); ok {
			return Match{Status: http.StatusOK, Route: route, Params: params}
		}
		methodCandidate = true
	}

	if methodCandidate {
		return Match{Status: http.StatusMethodNotAllowed}
	}
	return Match{Status: http.StatusNotFound}
}

// ServeHTTP dispatches the request and writes the fallback responses.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	match := rt.Dispatch(req.Method, req.URL.Path)

	switch match.Status {
	case http.StatusNotFound:
		dispatchMetrics().observe(outcomeNotFound)
		rt.responder.HandleNotFound(w, req)
	case http.StatusMethodNotAllowed:
		dispatchMetrics().observe(outcomeMethodNotAllowed)
		rt.responder.HandleMethodNotAllowed(w, req)
	default:
		rt.invoke(w, req, match)
	}
}

func (rt *Router) invoke(w http.ResponseWriter, req *http.Request, match Match) {
	ww := newResponseWriter(w)
	start := time.Now()
	template := match.Route.pattern.String()

	defer func() {
		if p := recover(); p != nil {
			dispatchMetrics().observe(outcomeError)
			err := &PanicError{value: p, stack: debug.Stack()}
			rt.fail(ww, req, err)
		}
		dispatchMetrics().observeDuration(template, time.Since(start))
	}()

	if err := match.Route.handler(ww, req, match.Params); err != nil {
		dispatchMetrics().observe(outcomeError)
		rt.fail(ww, req, err)
		return
	}
	dispatchMetrics().observe(outcomeMatched)
}

func (rt *Router) fail(ww *responseWriter, req *http.Request, err error) {
	if ww.Written() {
		attrs := []any{"error", err, "method", req.Method, "path", req.URL.Path, "status", ww.Status()}
		if pe, ok := err.(*PanicError); ok {
			attrs = append(attrs, "stack", string(pe.Stack()))
		}
		rt.logger.ErrorContext(req.Context(), "handler failed after response was written", attrs...)
		return
	}
	rt.responder.HandleInternalServerError(ww, req, err)
}

func normalizeMethod(method string) string {
	method = strings.TrimSpace(method)
	if method == AnyMethod {
		return AnyMethod
	}
	return strings.ToUpper(method)
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	value any
	stack []byte
}

// Error returns the panic value formatted as a message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%v", e.value)
}

// Value returns the original panic value.
func (e *PanicError) Value() any {
	return e.value
}

// Stack returns the stack captured at recovery.
func (e *PanicError) Stack() []byte {
	return e.stack
}

// Unwrap exposes a panicked error to errors.Is and errors.As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
