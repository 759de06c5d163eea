package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName carries the token between browser and API.
	CookieName = "authToken"
	// CookiePath must match on login and logout or the browser keeps the cookie.
	CookiePath = "/api"

	contextUserID = "user_id"
	contextEmail  = "user_email"
)

// SetCookie writes the token as an HttpOnly, SameSite=Lax cookie.
func SetCookie(c *gin.Context, token string, issuer *Issuer, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(issuer.TTL().Seconds()), CookiePath, "", secure, true)
}

func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, CookiePath, "", secure, true)
}

// RequireUser rejects requests without a valid token cookie and stores the
// user id in the gin context.
func RequireUser(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
			return
		}
		claims, err := issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the id stored by RequireUser.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(contextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
