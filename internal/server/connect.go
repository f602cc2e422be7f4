package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	connectdomain "github.com/smallbiznis/checkout/internal/connect/domain"
)

type createConnectedAccountRequest struct {
	Email           string `json:"email"`
	ExternalPartyID string `json:"externalPartyId"`
}

func (s *Server) CreateConnectedAccount(c *gin.Context) {
	var req createConnectedAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	account, err := s.connectSvc.CreateAccount(c.Request.Context(), req.Email, req.ExternalPartyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, account)
}

type createOnboardingLinkRequest struct {
	AccountID string `json:"accountId"`
}

func (s *Server) CreateOnboardingLink(c *gin.Context) {
	var req createOnboardingLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	link, err := s.connectSvc.CreateOnboardingLink(c.Request.Context(), req.AccountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, link)
}

type createTransferRequest struct {
	AccountID      string  `json:"accountId"`
	Amount         float64 `json:"amountMajorUnits"`
	OrderRef       string  `json:"orderRef"`
	IdempotencyKey string  `json:"idempotencyKey"`
}

func (s *Server) CreateTransfer(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	transfer, err := s.connectSvc.Transfer(c.Request.Context(), connectdomain.TransferRequest{
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		OrderRef:       req.OrderRef,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, transfer)
}
