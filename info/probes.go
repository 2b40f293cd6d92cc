package info

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type probePayload struct {
	Status  string   `json:"status"`
	Details []string `json:"details,omitempty"`
}

func (ih *InfoHandler) respondProbe(w http.ResponseWriter, r *http.Request, statusCode int, state string, details ...string) {
	payload := probePayload{Status: state}
	if len(details) > 0 {
		payload.Details = append(payload.Details, details...)
	}
	ih.RespondWithJSON(w, r, statusCode, payload)
}

// runChecks runs every check under one deadline and joins all failures.
func (ih *InfoHandler) runChecks(ctx context.Context, checks []ProbeFunc) error {
	if len(checks) == 0 {
		return nil
	}

	timeout := ih.probeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var failures []string
	for idx, check := range checks {
		err := check(probeCtx)
		switch {
		case err == nil:
		case errors.Is(err, context.DeadlineExceeded):
			failures = append(failures, fmt.Sprintf("probe %d timed out after %s", idx+1, timeout))
		case errors.Is(err, context.Canceled):
			failures = append(failures, fmt.Sprintf("probe %d was cancelled", idx+1))
		default:
			failures = append(failures, err.Error())
		}
	}

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

func filterProbes(checks []ProbeFunc) []ProbeFunc {
	filtered := make([]ProbeFunc, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}

	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
