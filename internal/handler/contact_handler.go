package handler

import (
	"net/http"

	"Itemizer/internal/pkg"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	email *service.EmailService
}

type ContactReq struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func NewContactHandler(email *service.EmailService) *ContactHandler {
	return &ContactHandler{email: email}
}

// Contact forwards a visitor inquiry to support.
func (h *ContactHandler) Contact(c *gin.Context) {
	var req ContactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.email.SendInquiry(pkg.InquiryData{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}); err != nil {
		createFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
