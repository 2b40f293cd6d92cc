package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer is the subset of *http.Client used by NewHTTPProbe.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPResponseValidator can reject a response whose status was accepted.
type HTTPResponseValidator func(resp *http.Response) error

// HTTPProbeOption configures NewHTTPProbe.
type HTTPProbeOption func(*httpProbeConfig)

type httpProbeConfig struct {
	client     HTTPDoer
	allowed    map[int]struct{}
	header     http.Header
	validators []HTTPResponseValidator
}

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(client HTTPDoer) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		if client != nil {
			cfg.client = client
		}
	}
}

// WithHTTPAllowedStatuses accepts only the listed codes instead of any 2xx.
func WithHTTPAllowedStatuses(statuses ...int) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		if len(statuses) == 0 {
			cfg.allowed = nil
			return
		}
		cfg.allowed = make(map[int]struct{}, len(statuses))
		for _, status := range statuses {
			cfg.allowed[status] = struct{}{}
		}
	}
}

// WithHTTPHeader sets a request header on every probe request.
func WithHTTPHeader(key, value string) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		cfg.header.Set(key, value)
	}
}

// WithHTTPResponseValidator adds a check that runs after the status check.
func WithHTTPResponseValidator(validator HTTPResponseValidator) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		if validator != nil {
			cfg.validators = append(cfg.validators, validator)
		}
	}
}

func (c *httpProbeConfig) accepts(status int) bool {
	if c.allowed == nil {
		return status >= 200 && status < 300
	}
	_, ok := c.allowed[status]
	return ok
}

// NewHTTPProbe requests target and succeeds on a 2xx response, or on one of
// the codes passed to WithHTTPAllowedStatuses. An empty method means GET.
func NewHTTPProbe(name, method, target string, opts ...HTTPProbeOption) Func {
	cfg := &httpProbeConfig{client: http.DefaultClient, header: make(http.Header)}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	verb := strings.ToUpper(strings.TrimSpace(method))
	if verb == "" {
		verb = http.MethodGet
	}
	target = strings.TrimSpace(target)

	return func(ctx context.Context) error {
		if target == "" {
			return fmt.Errorf("%s probe: target URL is required", name)
		}

		req, err := http.NewRequestWithContext(contextOrBackground(ctx), verb, target, nil)
		if err != nil {
			return fmt.Errorf("%s probe: failed to build request: %w", name, err)
		}
		for key, values := range cfg.header {
			req.Header[key] = append([]string(nil), values...)
		}

		resp, err := cfg.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s probe request failed: %w", name, err)
		}
		defer resp.Body.Close()

		if !cfg.accepts(resp.StatusCode) {
			return fmt.Errorf("%s probe: unexpected status %d %s", name, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		for _, validate := range cfg.validators {
			if err := validate(resp); err != nil {
				return fmt.Errorf("%s probe: %w", name, err)
			}
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
}
