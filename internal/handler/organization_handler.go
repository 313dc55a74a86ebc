package handler

import (
	"net/http"
	"strconv"

	"Itemizer/internal/activity"
	"Itemizer/internal/middleware"
	"Itemizer/internal/model"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	svc         *service.OrganizationService
	memberships *service.MembershipService
	logs        *service.LogService
}

type OrganizationReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	BannerURL   string `json:"banner_url"`
}

type InviteReq struct {
	Email string `json:"email"`
}

type TransferReq struct {
	AdminID uint64 `json:"admin_id" binding:"required"`
}

type AcceptReq struct {
	RequestID uint64 `json:"request_id" binding:"required"`
}

func NewOrganizationHandler(svc *service.OrganizationService, memberships *service.MembershipService, logs *service.LogService) *OrganizationHandler {
	return &OrganizationHandler{svc: svc, memberships: memberships, logs: logs}
}

func joined(c *gin.Context, m *model.Membership) {
	middleware.SetActivity(c, activity.Entry{Kind: activity.KindMembership, OrganizationID: m.OrganizationID, Subject: m})
	c.JSON(http.StatusCreated, m)
}

// Create answers the OWNER membership of the new organization.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req OrganizationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), service.OrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		BannerURL:   req.BannerURL,
	})
	if err != nil {
		createFailed(c, err)
		return
	}
	joined(c, m)
}

func (h *OrganizationHandler) Logs(c *gin.Context) {
	org, _ := middleware.Record[model.Organization](c)
	list, err := h.logs.ListByOrg(c.Request.Context(), org.ID)
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrganizationHandler) Invite(c *gin.Context) {
	org, _ := middleware.Record[model.Organization](c)
	var req InviteReq
	// the body is optional
	_ = c.ShouldBindJSON(&req)
	url, err := h.svc.Invite(c.Request.Context(), org, req.Email)
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation_url": url})
}

func (h *OrganizationHandler) Report(c *gin.Context) {
	org, _ := middleware.Record[model.Organization](c)
	if err := h.svc.Report(c.Request.Context(), org, middleware.CurrentUser(c)); err != nil {
		createFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrganizationHandler) TransferOwnership(c *gin.Context) {
	orgID, err := strconv.ParseUint(c.Param("org_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization record of id, " + c.Param("org_id") + ", does not exist. Please try again later."})
		return
	}
	var req TransferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.svc.TransferOwnership(c.Request.Context(), middleware.CurrentUser(c), orgID, req.AdminID)
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Invitation describes the organization behind an invitation link.
func (h *OrganizationHandler) Invitation(c *gin.Context) {
	org, err := h.svc.ResolveInvitation(c.Request.Context(), c.Param("token"))
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          org.ID,
		"name":        org.Name,
		"description": org.Description,
		"image_url":   org.ImageURL,
		"banner_url":  org.BannerURL,
	})
}

func (h *OrganizationHandler) AcceptInvitation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized! Please log in to continue."})
		return
	}
	m, err := h.svc.JoinByInvitation(c.Request.Context(), user, c.Param("token"))
	if err != nil {
		createFailed(c, err)
		return
	}
	joined(c, m)
}

func (h *OrganizationHandler) AcceptRequest(c *gin.Context) {
	var req AcceptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.memberships.AcceptRequest(c.Request.Context(), req.RequestID)
	if err != nil {
		createFailed(c, err)
		return
	}
	joined(c, m)
}
