package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"invadmin-stock-services/internal/middleware"
	"invadmin-stock-services/pkg/response"

	"github.com/go-chi/chi/v5"
)

var errMissingParam = errors.New("missing param")

func nowUTC() time.Time {
	return time.Now().UTC()
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := chi.URLParam(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

// session resolves the caller's session, writing the error response itself
// when the middleware did not run.
func session(w http.ResponseWriter, r *http.Request) (*middleware.Session, bool) {
	s, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
		return nil, false
	}
	return s, true
}
