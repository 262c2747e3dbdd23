package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shestoi/storefront/services/storefront/internal/authctx"
)

const (
	// SessionHeader - заголовок с id сессии для API клиентов
	SessionHeader = "x-session-id"
	// SessionCookie - cookie с id сессии для браузера
	SessionCookie = "sid"

	maxSessionIDLen = 128
)

// Session - HTTP middleware: берёт id сессии из заголовка x-session-id или cookie sid,
// при отсутствии выдаёт новый uuid и ставит cookie. id кладётся в context.
func Session(cookieTTL time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(SessionHeader)
			if sid == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					sid = c.Value
				}
			}

			if sid == "" || len(sid) > maxSessionIDLen {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(cookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			w.Header().Set(SessionHeader, sid)
			next.ServeHTTP(w, r.WithContext(authctx.WithSessionID(r.Context(), sid)))
		})
	}
}
