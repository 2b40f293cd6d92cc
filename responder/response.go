package responder

import (
	"errors"
	"net/http"

	"github.com/ssl/cleanshot-cloud/jsonutil"
)

// HandleAPIError renders {"error": err.Error()} with the supplied HTTP status,
// tags the response with a trace id and logs it using the status metadata.
func (r *Responder) HandleAPIError(w http.ResponseWriter, req *http.Request, status int, err error, logMsg ...string) {
	if err == nil {
		return
	}
	r.respondError(w, req, status, err.Error(), logMsg)
}

// HandleErrorMessage is HandleAPIError for callers that only hold a message.
func (r *Responder) HandleErrorMessage(w http.ResponseWriter, req *http.Request, status int, message string, logMsg ...string) {
	r.respondError(w, req, status, message, logMsg)
}

// HandleNotFound writes the 404 {"error":"Not Found"} fallback.
func (r *Responder) HandleNotFound(w http.ResponseWriter, req *http.Request) {
	r.respondError(w, req, http.StatusNotFound, http.StatusText(http.StatusNotFound), nil)
}

// HandleMethodNotAllowed writes the 405 {"error":"Method Not Allowed"} fallback.
func (r *Responder) HandleMethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	r.respondError(w, req, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), nil)
}

// HandleInternalServerError is a shortcut that reports a 500 status code.
func (r *Responder) HandleInternalServerError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	if err == nil {
		err = errors.New(http.StatusText(http.StatusInternalServerError))
	}
	r.HandleAPIError(w, req, http.StatusInternalServerError, err, logMsg...)
}

// HandleBadRequestError reports client validation errors using HTTP 400.
func (r *Responder) HandleBadRequestError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusBadRequest, err, logMsg...)
}

// HandleErrors inspects the supplied error using the configured classifier and
// emits an appropriate JSON response. Unclassified errors become a 500.
func (r *Responder) HandleErrors(w http.ResponseWriter, req *http.Request, err error, msgs ...string) {
	if err == nil {
		return
	}

	if status, handled := r.classifyError(err); handled {
		r.HandleAPIError(w, req, status, err, msgs...)
		return
	}

	r.HandleInternalServerError(w, req, err, msgs...)
}

// RespondWithJSON serialises the provided value and writes it to the response
// using the supplied status code.
func (r *Responder) RespondWithJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	r.respondWithJSON(w, req, status, v)
}

// Echo writes a bare string wrapped as {"echo": message}.
func (r *Responder) Echo(w http.ResponseWriter, req *http.Request, status int, message string) {
	r.respondWithJSON(w, req, status, EchoPayload{Echo: message})
}

// RespondRaw writes body unmodified with an explicit content type.
func (r *Responder) RespondRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	if w == nil {
		return
	}
	r.writeResponse(w, status, resolveContentType(contentType, "application/octet-stream"), body)
}

// NoContent writes a bodiless 204 response.
func (r *Responder) NoContent(w http.ResponseWriter) {
	if w == nil {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Responder) respondError(w http.ResponseWriter, req *http.Request, status int, message string, logMsg []string) {
	traceID := NewTraceID()
	r.logError(req, r.statusMetaFor(status), message, traceID, status, logMsg)

	if w != nil {
		w.Header().Set(TraceHeader, traceID)
	}
	r.respondWithJSON(w, req, status, ErrorPayload{Error: message})
}

func (r *Responder) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload any) {
	if w == nil {
		return
	}

	body, err := r.marshalPayload(payload)
	if err != nil {
		r.logger().Error("failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	r.writeResponse(w, status, jsonContentType, body)
}

func (r *Responder) marshalPayload(payload any) ([]byte, error) {
	data, err := jsonutil.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return data, nil
}

func (r *Responder) writeResponse(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.logger().Error("failed to write response", "error", err)
	}
}

func resolveContentType(provided, fallback string) string {
	if provided == "" {
		return fallback
	}
	return provided
}
