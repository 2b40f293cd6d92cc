package info

import (
	"errors"
	"html/template"
	"time"

	"github.com/ssl/cleanshot-cloud/probe"
	"github.com/ssl/cleanshot-cloud/responder"
)

// InfoProvider returns the payload served by /info/version.
type InfoProvider func() any

// SwaggerProvider returns the OpenAPI document as JSON.
type SwaggerProvider func() ([]byte, error)

// InfoOption configures NewInfoHandler.
type InfoOption func(*InfoHandler)

const defaultProbeTimeout = 2 * time.Second

// ProbeFunc is a named dependency check.
type ProbeFunc = probe.Func

// InfoHandler serves the diagnostic endpoints.
type InfoHandler struct {
	*responder.Responder
	baseURL         string
	title           string
	infoProvider    InfoProvider
	swaggerProvider SwaggerProvider
	docsTemplate    *template.Template
	probeTimeout    time.Duration
	livenessChecks  []ProbeFunc
	readinessChecks []ProbeFunc
}

// NewInfoHandler returns a handler with no probes, an empty version payload
// and no OpenAPI document.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder: responder.NewResponder(),
		baseURL:   "/info",
		title:     "API reference",
		infoProvider: func() any {
			return map[string]string{}
		},
		swaggerProvider: func() ([]byte, error) {
			return nil, errors.New("api swagger provider not configured")
		},
		docsTemplate: defaultDocsTemplate,
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

// WithInfoResponder replaces the responder used for JSON and error output.
func WithInfoResponder(r *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if r != nil {
			ih.Responder = r
		}
	}
}

// WithBaseURL sets the path prefix the endpoints are mounted under.
func WithBaseURL(baseURL string) InfoOption {
	return func(ih *InfoHandler) {
		ih.baseURL = baseURL
	}
}

// WithTitle sets the documentation page title.
func WithTitle(title string) InfoOption {
	return func(ih *InfoHandler) {
		if title != "" {
			ih.title = title
		}
	}
}

// WithInfoProvider sets the source of the version payload.
func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.infoProvider = provider
		}
	}
}

// WithSwaggerProvider sets the source of the OpenAPI JSON document.
func WithSwaggerProvider(provider SwaggerProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.swaggerProvider = provider
		}
	}
}

// WithDocsTemplate replaces the embedded documentation page. The template
// receives DocsData.
func WithDocsTemplate(tmpl *template.Template) InfoOption {
	return func(ih *InfoHandler) {
		if tmpl != nil {
			ih.docsTemplate = tmpl
		}
	}
}

// WithProbeTimeout bounds each probe run.
func WithProbeTimeout(timeout time.Duration) InfoOption {
	return func(ih *InfoHandler) {
		if timeout > 0 {
			ih.probeTimeout = timeout
		}
	}
}

// WithLivenessChecks sets the checks behind /healthz.
func WithLivenessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) {
		ih.livenessChecks = filterProbes(checks)
	}
}

// WithReadinessChecks sets the checks behind /readyz.
func WithReadinessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) {
		ih.readinessChecks = filterProbes(checks)
	}
}
