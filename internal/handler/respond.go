package handler

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/pyservice"
	"github.com/bharath13925/street-view-videos-sub000/internal/service"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service and Python-service errors to an HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	ev := logging.Ctx(r.Context()).Warn()
	if status >= 500 {
		ev = logging.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", status).Str("kind", pyservice.Kind(err)).Msg(msg)
	writeJSON(w, status, errorResponse{Error: msg, Details: err.Error()})
}

func statusFor(err error) (int, string) {
	var httpErr *pyservice.HTTPError
	var svcErr *pyservice.ServiceError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, pyservice.ErrVideoNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, pyservice.ErrUnavailable):
		return http.StatusServiceUnavailable, "route service unavailable"
	case errors.Is(err, pyservice.ErrTimeout):
		return http.StatusGatewayTimeout, "route service timed out"
	case errors.As(err, &httpErr), errors.As(err, &svcErr):
		return http.StatusBadGateway, "route service failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeBody decodes a single JSON value into dst. An empty body leaves
// dst untouched so optional bodies keep their defaults; anything after the
// value is rejected.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body", Details: err.Error()})
}
