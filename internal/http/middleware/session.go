package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/licitaciones-portal/internal/session"
)

const sessionKey = "session"

var crawlerMarkers = []string{"bot", "crawler", "spider", "slurp", "facebookexternalhit", "curl/", "wget/"}

// Session attaches the browser's server-side session, issuing a fresh
// cookie when the store hands back a new token. HEAD requests and crawlers
// without a cookie get a throwaway session.
func Session(store *session.Store, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(session.CookieName)
		if token == "" && (c.Request.Method == http.MethodHead || isCrawler(c.Request.UserAgent())) {
			c.Set(sessionKey, store.Ephemeral())
			c.Next()
			return
		}
		sess, err := store.Get(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		if sess.Token != "" {
			maxAge := int(time.Until(sess.ExpiresAt).Seconds())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, sess.Token, maxAge, "/", "", secure, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func MustSession(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}

func isCrawler(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range crawlerMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
