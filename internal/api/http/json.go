package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"evrental-backend/internal/domain"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryInt64 reads an optional numeric query parameter, recording bad input on v.
func queryInt64(r *http.Request, name string, v *domain.ValidationError) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		v.Add(name, "must be a non-negative integer")
		return 0
	}
	return n
}

// parseDate reads an optional yyyy-mm-dd field, recording bad input on v.
func parseDate(field, raw string, v *domain.ValidationError) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		v.Add(field, "must be a date in yyyy-mm-dd format")
		return time.Time{}
	}
	return t
}
