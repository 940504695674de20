package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCartCookie is the cookie holding the anonymous cart token.
const SessionCartCookie = "sessionCartId"

const sessionCartTTL = 30 * 24 * time.Hour

// SessionCart guarantees every request carries a cart token: reads the cookie
// when present, issues one otherwise, and seeds the context either way.
func SessionCart() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionCartID := ""
			if cookie, err := r.Cookie(SessionCartCookie); err == nil {
				sessionCartID = cookie.Value
			}
			if sessionCartID == "" {
				sessionCartID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCartCookie,
					Value:    sessionCartID,
					Path:     "/",
					Expires:  time.Now().Add(sessionCartTTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionCartID(r.Context(), sessionCartID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
