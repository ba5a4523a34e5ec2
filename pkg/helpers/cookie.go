package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetPair stores both tokens as HTTP-only cookies so browser clients
// authenticate without handling tokens themselves.
func (m *CookieManager) SetPair(c *gin.Context, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", access, int(accessTTL.Seconds()), "/", m.Domain, m.Secure, true)
	c.SetCookie("refresh_token", refresh, int(refreshTTL.Seconds()), "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie("refresh_token", "", -1, "/", m.Domain, m.Secure, true)
}
