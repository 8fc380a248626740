package endpoints

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/http/api"
	"github.com/miqat-dev/miqat/internal/http/api/packets"
	"github.com/miqat-dev/miqat/internal/http/middleware"
)

type AuthController struct {
	secretKey   string
	pairingCode string
	deviceID    string
}

func NewAuthController(secretKey, pairingCode, deviceID string) *AuthController {
	return &AuthController{secretKey: secretKey, pairingCode: pairingCode, deviceID: deviceID}
}

// AuthPublicModule exposes the pairing endpoint, the only unauthenticated
// route.
func AuthPublicModule(secretKey, pairingCode, deviceID string) api.Module {
	ctl := NewAuthController(secretKey, pairingCode, deviceID)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/auth/pair", api.ResolveEndpoint(ctl.pair))
	})
}

func (a *AuthController) pair(ctx *gin.Context) (any, *api.APIError) {
	var request packets.PairRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.DeviceID != a.deviceID ||
		subtle.ConstantTimeCompare([]byte(request.PairingCode), []byte(a.pairingCode)) != 1 {
		log.Warn().Str("device", request.DeviceID).Msg("pairing rejected")
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid pairing credentials"}
	}

	token, err := middleware.GenerateJWT(request.DeviceID, a.secretKey)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not issue token"}
	}

	return packets.PairResponse{Token: token}, nil
}
