package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/checkout/internal/stripe"
)

// HandleWebhook processes one processor delivery. The body is read raw and
// handed to the verifier unmodified.
func (s *Server) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sigHeader := c.GetHeader(stripe.SignatureHeader)
	if err := s.txnSvc.ProcessWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
