package probe_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ssl/cleanshot-cloud/probe"
)

type stubDB struct {
	err   error
	calls int
}

func (s *stubDB) PingContext(context.Context) error {
	s.calls++
	return s.err
}

type stubHTTPClient struct {
	status  int
	err     error
	lastReq *http.Request
}

func (s *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{StatusCode: s.status, Body: io.NopCloser(strings.NewReader("{}"))}, nil
}

func TestNewPingProbe(t *testing.T) {
	t.Run("nil function", func(t *testing.T) {
		if err := probe.NewPingProbe("blob", nil)(context.Background()); err == nil {
			t.Fatal("expected error when ping function is nil")
		}
	})

	t.Run("nil context", func(t *testing.T) {
		check := probe.NewPingProbe("blob", func(ctx context.Context) error {
			if ctx == nil {
				t.Fatal("expected non-nil context")
			}
			return nil
		})
		if err := check(nil); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("failure is wrapped with the name", func(t *testing.T) {
		sentinel := errors.New("bucket missing")
		err := probe.NewPingProbe("blob", func(context.Context) error { return sentinel })(context.Background())
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected error to wrap sentinel, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "blob probe failed") {
			t.Fatalf("unexpected message %q", err)
		}
	})
}

func TestNewDBPingProbe(t *testing.T) {
	if err := probe.NewDBPingProbe("database", nil)(context.Background()); err == nil {
		t.Fatal("expected error for nil db")
	}

	db := &stubDB{}
	if err := probe.NewDBPingProbe("database", db)(context.Background()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if db.calls != 1 {
		t.Fatalf("expected one ping, got %d", db.calls)
	}

	db.err = errors.New("connection refused")
	if err := probe.NewDBPingProbe("database", db)(context.Background()); !errors.Is(err, db.err) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestNewHTTPProbe(t *testing.T) {
	tests := []struct {
		name    string
		client  *stubHTTPClient
		opts    []probe.HTTPProbeOption
		target  string
		wantErr bool
	}{
		{name: "2xx succeeds", client: &stubHTTPClient{status: http.StatusOK}, target: "http://svc/healthz"},
		{name: "5xx fails", client: &stubHTTPClient{status: http.StatusServiceUnavailable}, target: "http://svc/healthz", wantErr: true},
		{name: "transport error fails", client: &stubHTTPClient{err: errors.New("dial tcp: refused")}, target: "http://svc/healthz", wantErr: true},
		{name: "empty target fails", client: &stubHTTPClient{status: http.StatusOK}, target: "  ", wantErr: true},
		{
			name:   "allowed statuses replace the 2xx rule",
			client: &stubHTTPClient{status: http.StatusMethodNotAllowed},
			opts:   []probe.HTTPProbeOption{probe.WithHTTPAllowedStatuses(http.StatusMethodNotAllowed)},
			target: "http://svc/",
		},
		{
			name:    "2xx outside the allowed statuses fails",
			client:  &stubHTTPClient{status: http.StatusOK},
			opts:    []probe.HTTPProbeOption{probe.WithHTTPAllowedStatuses(http.StatusNoContent)},
			target:  "http://svc/",
			wantErr: true,
		},
		{
			name:   "validator vetoes",
			client: &stubHTTPClient{status: http.StatusOK},
			opts: []probe.HTTPProbeOption{probe.WithHTTPResponseValidator(func(*http.Response) error {
				return errors.New("stale build")
			})},
			target:  "http://svc/version",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]probe.HTTPProbeOption{probe.WithHTTPClient(tt.client)}, tt.opts...)
			err := probe.NewHTTPProbe("api", "", tt.target, opts...)(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
		})
	}
}

func TestNewHTTPProbeSendsHeadersAndMethod(t *testing.T) {
	client := &stubHTTPClient{status: http.StatusOK}
	check := probe.NewHTTPProbe("api", "head", "http://svc/healthz",
		probe.WithHTTPClient(client),
		probe.WithHTTPHeader("User-Agent", "cleanshot-healthcheck"),
	)

	if err := check(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.lastReq.Method != http.MethodHead {
		t.Fatalf("expected HEAD, got %s", client.lastReq.Method)
	}
	if got := client.lastReq.Header.Get("User-Agent"); got != "cleanshot-healthcheck" {
		t.Fatalf("unexpected user agent %q", got)
	}
}

func ExampleNewDBPingProbe() {
	check := probe.NewDBPingProbe("database", &stubDB{err: errors.New("no route to host")})
	fmt.Println(check(context.Background()))
	// Output: database probe failed: no route to host
}

func ExampleNewHTTPProbe() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	check := probe.NewHTTPProbe("self", http.MethodGet, srv.URL+"/healthz", probe.WithHTTPClient(srv.Client()))
	fmt.Println(check(context.Background()) == nil)
	// Output: true
}
