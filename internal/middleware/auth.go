package middleware

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding the admin session.
const SessionName = "session"

// RequireAdmin redirects to the login page unless the session carries the
// admin flag.
func RequireAdmin(store *sessions.CookieStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := store.Get(r, SessionName)
			admin, _ := session.Values["admin"].(string)

			if admin == "" {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
