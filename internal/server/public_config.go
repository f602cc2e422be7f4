package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/checkout/internal/checkout/domain"
)

type publicConfig struct {
	PublishableKey string `json:"publishableKey"`
	Currency       string `json:"currency"`
	MinAmount      int64  `json:"minAmount"`
	MaxAmount      int64  `json:"maxAmount"`
	Environment    string `json:"environment"`
}

// GetPublicConfig exposes what a browser needs to mount the payment form.
// Only the publishable key ever leaves the server.
func (s *Server) GetPublicConfig(c *gin.Context) {
	respondData(c, http.StatusOK, publicConfig{
		PublishableKey: s.cfg.StripePublishableKey,
		Currency:       checkoutdomain.Currency,
		MinAmount:      checkoutdomain.MinChargeAmount,
		MaxAmount:      checkoutdomain.MaxChargeAmount,
		Environment:    s.cfg.Environment,
	})
}
