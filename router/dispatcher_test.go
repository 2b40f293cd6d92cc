package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ssl/cleanshot-cloud/responder"
)

func quietRouter() *Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(
		WithResponder(responder.NewResponder(responder.WithLogger(logger))),
		WithRouterLogger(logger),
	)
}

func noop(w http.ResponseWriter, _ *http.Request, _ Params) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func TestDispatchWithoutRoutesIsNotFound(t *testing.T) {
	rt := quietRouter()

	for _, method := range []string{http.MethodGet, http.MethodPost, "PURGE"} {
		if got := rt.Dispatch(method, "/anything").Status; got != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", method, got)
		}
	}
}

func TestDispatchFirstRegisteredRouteWins(t *testing.T) {
	rt := quietRouter()
	var hit string

	rt.Get("/v1/user", func(w http.ResponseWriter, _ *http.Request, _ Params) error {
		hit = "literal"
		return nil
	})
	rt.Get("/@slug", func(w http.ResponseWriter, _ *http.Request, p Params) error {
		hit = "slug:" + p.Get("slug")
		return nil
	})
	rt.Get("/v1/@what", func(w http.ResponseWriter, _ *http.Request, _ Params) error {
		hit = "shadowed"
		return nil
	})

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/user", nil))
	if hit != "literal" {
		t.Fatalf("expected literal route, got %q", hit)
	}

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/01ABC", nil))
	if hit != "slug:01ABC" {
		t.Fatalf("expected slug route, got %q", hit)
	}

	match := rt.Dispatch(http.MethodGet, "/v1/other")
	if match.Status != http.StatusOK || match.Route.Pattern().String() != "/v1/@what" {
		t.Fatalf("unexpected match: %+v", match)
	}
}

func TestDispatchStickyMethodNotAllowed(t *testing.T) {
	rt := quietRouter()
	rt.Get("/v1/user", noop)
	rt.Post("/v1/auth/login", noop)

	// A GET route exists, so a GET miss is 405 even though a POST route
	// matches the path.
	if got := rt.Dispatch(http.MethodGet, "/v1/auth/login").Status; got != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", got)
	}

	// No DELETE route exists at all.
	if got := rt.Dispatch(http.MethodDelete, "/v1/user").Status; got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}

	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 response, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "Method Not Allowed")
}

func TestDispatchMethodIsCaseInsensitive(t *testing.T) {
	rt := quietRouter()
	rt.Route("post", "/v1/media/image", noop)

	match := rt.Dispatch("POST", "/v1/media/image")
	if match.Status != http.StatusOK {
		t.Fatalf("expected match, got %d", match.Status)
	}
	if match.Route.Method() != http.MethodPost {
		t.Fatalf("expected normalized method, got %q", match.Route.Method())
	}
	if got := rt.Dispatch("post", "/v1/media/image").Status; got != http.StatusOK {
		t.Fatalf("expected lowercase request method to match, got %d", got)
	}
}

func TestAnyMethodMatchesEveryVerb(t *testing.T) {
	rt := quietRouter()
	rt.Any("/ping", noop)

	for _, method := range []string{http.MethodGet, http.MethodPut, "PURGE"} {
		if got := rt.Dispatch(method, "/ping").Status; got != http.StatusOK {
			t.Fatalf("%s: expected match, got %d", method, got)
		}
	}
	if got := rt.Dispatch(http.MethodGet, "/pong").Status; got != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for wildcard miss, got %d", got)
	}
}

func TestParamsArePassedToHandler(t *testing.T) {
	rt := quietRouter()
	var got Params
	rt.Post("/v1/media/image/@id/upload-completed", func(w http.ResponseWriter, _ *http.Request, p Params) error {
		got = p
		return nil
	})

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/media/image/17/upload-completed", nil))
	if got.Get("id") != "17" || len(got) != 1 {
		t.Fatalf("unexpected params: %v", got)
	}
}

func TestHandlerErrorBecomesInternalServerError(t *testing.T) {
	rt := quietRouter()
	rt.Post("/v1/media/upload/@id", func(http.ResponseWriter, *http.Request, Params) error {
		return errors.New("Upload not found")
	})

	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/media/upload/3", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "Upload not found")
}

func TestHandlerPanicBecomesInternalServerError(t *testing.T) {
	rt := quietRouter()
	rt.Get("/boom", func(http.ResponseWriter, *http.Request, Params) error {
		panic("kaboom")
	})

	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "kaboom")
}

func TestPanicErrorUnwrapsErrorValues(t *testing.T) {
	sentinel := errors.New("db down")
	err := &PanicError{value: sentinel}

	if !errors.Is(err, sentinel) {
		t.Fatal("expected panic error to unwrap to the panicked error")
	}
	if (&PanicError{value: 42}).Unwrap() != nil {
		t.Fatal("expected nil unwrap for non-error panic values")
	}
}

func TestHandlerErrorAfterWriteKeepsResponse(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	rt := NewRouter(WithRouterLogger(logger), WithResponder(responder.NewResponder(responder.WithLogger(logger))))

	rt.Get("/partial", func(w http.ResponseWriter, _ *http.Request, _ Params) error {
		w.WriteHeader(http.StatusAccepted)
		return errors.New("late failure")
	})

	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/partial", nil))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected original status to be kept, got %d", rr.Code)
	}
	if !bytes.Contains(logs.Bytes(), []byte("late failure")) {
		t.Fatalf("expected late failure to be logged, got %q", logs.String())
	}
}

func TestHandleRejectsBadRegistrations(t *testing.T) {
	rt := quietRouter()

	if err := rt.Handle(http.MethodGet, "/a/@id/@id", noop); !errors.Is(err, ErrDuplicateParam) {
		t.Fatalf("expected ErrDuplicateParam, got %v", err)
	}
	if err := rt.Handle(http.MethodGet, "/a", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
	if len(rt.Routes()) != 0 {
		t.Fatalf("expected failed registrations to be skipped, got %d routes", len(rt.Routes()))
	}
}

func assertErrorBody(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != want {
		t.Fatalf("unexpected error message: got %q want %q", body["error"], want)
	}
}
