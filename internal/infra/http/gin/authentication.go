package ginserver

import (
	"log/slog"

	gin "github.com/gin-gonic/gin"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/infra/security"
)

type TokenVerifier interface {
	Verify(raw string) (auth.Principal, error)
}

// AuthMiddleware attaches the caller principal when a valid bearer token is
// present. Anonymous requests pass through; role checks happen on the bus.
type AuthMiddleware struct {
	Verifier TokenVerifier
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := security.ExtractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Verifier == nil {
		c.Next()
		return
	}
	p, err := m.Verifier.Verify(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
	c.Next()
}
