// File: internal/middleware/admin_middleware.go
package middleware

import (
	"log"
	"net/http"

	"github.com/huddlehq/huddle/internal/repository/user"
)

// RequireAdmin checks that the authenticated user has the admin flag.
// It MUST be used AFTER the standard JWT authentication middleware.
func RequireAdmin(userRepo user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Printf("[AdminMiddleware] Forbidden: no valid userID in context for path %s", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			account, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				// Account deleted after the token was issued.
				log.Printf("[AdminMiddleware] Forbidden: could not load user %d from token: %v", userID, err)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if !account.IsAdmin {
				log.Printf("[AdminMiddleware] FORBIDDEN: non-admin user %d attempted admin route: %s", account.ID, r.URL.Path)
				http.Error(w, "Forbidden: You do not have permission to access this resource.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
