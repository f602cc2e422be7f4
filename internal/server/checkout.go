package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/checkout/internal/checkout/domain"
)

func (s *Server) CreateIntent(c *gin.Context) {
	var req checkoutdomain.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.checkoutSvc.CreateIntent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, resp)
}
