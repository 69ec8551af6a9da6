package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursecompass-backend/internal/services"
)

type AuthHandler struct {
	bridgeService services.SessionBridgeService
}

func NewAuthHandler(bridgeService services.SessionBridgeService) *AuthHandler {
	return &AuthHandler{bridgeService: bridgeService}
}

// GET /api/auth/session-token
// Exchanges the verified identity-provider session for database-service
// credentials, creating/refreshing the local user row on the way.
func (ah *AuthHandler) SessionToken(c *gin.Context) {
	creds, err := ah.bridgeService.BridgeSession(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, creds)
}
