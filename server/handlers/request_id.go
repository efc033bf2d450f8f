package handlers

import (
	"net/http"

	services "gigcast/service"

	"github.com/google/uuid"
)

// RequestIDMiddleware tags each request with the incoming X-Request-Id or a new uuid
// and echoes it in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(REQUEST_ID_HEADER)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(REQUEST_ID_HEADER, id)
		next.ServeHTTP(w, r.WithContext(services.ContextWithRequestID(r.Context(), id)))
	})
}
