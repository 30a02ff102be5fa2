package transport

import (
	"net/http"
	"strings"

	"github.com/rpggio/confsched/internal/domain/activity"
)

// OperatorMiddleware stores the request's operator in context for the audit trail.
func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := strings.TrimSpace(r.Header.Get(activity.OperatorHeader)); user != "" {
			next.ServeHTTP(w, r.WithContext(activity.WithUser(r.Context(), user)))
			return
		}
		next.ServeHTTP(w, r)
	})
}
