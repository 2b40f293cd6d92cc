package info

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ssl/cleanshot-cloud/router"
)

// Register mounts the endpoints below the base URL on rt.
func (ih *InfoHandler) Register(rt *router.Router) {
	base := strings.TrimSuffix(ih.baseURL, "/")

	rt.Get(base+"/status", router.Wrap(http.HandlerFunc(ih.GetStatus)))
	rt.Get(base+"/healthz", router.Wrap(http.HandlerFunc(ih.GetHealthz)))
	rt.Get(base+"/readyz", router.Wrap(http.HandlerFunc(ih.GetReadyz)))
	rt.Get(base+"/version", router.Wrap(http.HandlerFunc(ih.GetVersion)))
	rt.Get(base+"/openapi.json", router.Wrap(http.HandlerFunc(ih.GetOpenAPIJSON)))
	rt.Get(base+"/docs", router.Wrap(http.HandlerFunc(ih.GetDocs)))
}

// GetStatus always reports healthy.
func (ih *InfoHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ih.respondProbe(w, r, http.StatusOK, "HEALTHY")
}

// GetHealthz runs the liveness checks.
func (ih *InfoHandler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	if err := ih.runChecks(r.Context(), ih.livenessChecks); err != nil {
		ih.HandleAPIError(w, r, http.StatusServiceUnavailable, err, "liveness probe failed")
		return
	}
	ih.respondProbe(w, r, http.StatusOK, "ok")
}

// GetReadyz runs the readiness checks.
func (ih *InfoHandler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	if err := ih.runChecks(r.Context(), ih.readinessChecks); err != nil {
		ih.HandleAPIError(w, r, http.StatusServiceUnavailable, err, "readiness probe failed")
		return
	}
	ih.respondProbe(w, r, http.StatusOK, "ready")
}

// GetVersion serves the InfoProvider payload.
func (ih *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := ih.infoProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	ih.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON serves the OpenAPI document verbatim.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	body, err := ih.swaggerProvider()
	if err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to load OpenAPI document")
		return
	}
	ih.RespondRaw(w, http.StatusOK, "application/json", body)
}

// GetDocs renders the documentation page pointing at GetOpenAPIJSON.
func (ih *InfoHandler) GetDocs(w http.ResponseWriter, r *http.Request) {
	if ih.docsTemplate == nil {
		err := errors.New("docs template not configured")
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to render docs template")
		return
	}

	data := DocsData{
		Title:   ih.title,
		SpecURL: strings.TrimSuffix(ih.baseURL, "/") + "/openapi.json",
	}

	var page strings.Builder
	if err := ih.docsTemplate.Execute(&page, data); err != nil {
		ih.HandleAPIError(w, r, http.StatusInternalServerError, err, "failed to render docs template")
		return
	}
	ih.RespondRaw(w, http.StatusOK, "text/html; charset=utf-8", []byte(page.String()))
}
