package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/birdtalk/internal/errors"
	"github.com/vytor/birdtalk/internal/logger"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write response: %v", err)
	}
}

func errorBody(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}

// requestValue reads key from a JSON body, falling back to form and query
// values for other content types.
func requestValue(r *http.Request, key string) (string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return strings.TrimSpace(r.FormValue(key)), nil
	}
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	// Bird ids are uint64 and must not pass through float64.
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil && !stderrors.Is(err, io.EOF) {
		return "", errors.NewBadRequestError("invalid JSON body")
	}
	switch v := body[key].(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", errors.NewBadRequestError("invalid " + key)
	}
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid %s: %s", name, raw)
		return 0, errors.NewBadRequestError("invalid " + name)
	}
	return id, nil
}
