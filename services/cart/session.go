package cart

import (
	"net/http"

	"github.com/MarcGrol/storefront/lib/myuuid"
)

const (
	SessionCookieName = "cart_session"
	sessionMaxAge     = 30 * 24 * 60 * 60
)

// SessionUID returns the cart session of the browser and starts a new one when there is none
func SessionUID(w http.ResponseWriter, r *http.Request, uuider myuuid.UUIDer) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sessionUID := uuider.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionUID,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sessionUID
}
