package handler

import (
	"net/http"

	"Itemizer/internal/activity"
	"Itemizer/internal/middleware"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	items       *service.ItemService
	assignments *service.AssignmentService
}

type ItemReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PartNumber  string `json:"part_number"`
	IsPublic    bool   `json:"is_public"`
}

func (r ItemReq) input() service.ItemInput {
	return service.ItemInput{
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		PartNumber:  r.PartNumber,
		IsPublic:    r.IsPublic,
	}
}

// AssignmentReq is the body of POST /assignments.
type AssignmentReq struct {
	ItemID          uint64 `json:"item_id" binding:"required"`
	OrganizationID  uint64 `json:"organization_id" binding:"required"`
	CurrentQuantity int    `json:"current_quantity"`
	EnoughThreshold int    `json:"enough_threshold"`
}

type NewItemReq struct {
	ItemReq
	OrganizationID  uint64 `json:"organization_id" binding:"required"`
	CurrentQuantity int    `json:"current_quantity"`
	EnoughThreshold int    `json:"enough_threshold"`
}

type ReportItemReq struct {
	ItemID         uint64 `json:"item_id" binding:"required"`
	SubmissionText string `json:"submission_text"`
}

func NewItemHandler(items *service.ItemService, assignments *service.AssignmentService) *ItemHandler {
	return &ItemHandler{items: items, assignments: assignments}
}

func (h *ItemHandler) Create(c *gin.Context) {
	var req ItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.items.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// AddNewItem creates an item together with its first assignment.
func (h *ItemHandler) AddNewItem(c *gin.Context) {
	var req NewItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, a, err := h.items.AddNewItem(c.Request.Context(), middleware.CurrentUser(c), req.input(), service.AssignmentInput{
		OrganizationID:  req.OrganizationID,
		CurrentQuantity: req.CurrentQuantity,
		EnoughThreshold: req.EnoughThreshold,
	})
	if err != nil {
		createFailed(c, err)
		return
	}
	middleware.SetActivity(c, activity.Entry{Kind: activity.KindItem, OrganizationID: a.OrganizationID, Subject: a})
	c.JSON(http.StatusCreated, gin.H{"item": item, "assignment": a})
}

func (h *ItemHandler) Report(c *gin.Context) {
	var req ReportItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.items.Report(c.Request.Context(), middleware.CurrentUser(c), req.ItemID, req.SubmissionText); err != nil {
		createFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ItemHandler) Assign(c *gin.Context) {
	var req AssignmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.assignments.Create(c.Request.Context(), service.AssignmentInput{
		ItemID:          req.ItemID,
		OrganizationID:  req.OrganizationID,
		CurrentQuantity: req.CurrentQuantity,
		EnoughThreshold: req.EnoughThreshold,
	})
	if err != nil {
		createFailed(c, err)
		return
	}
	middleware.SetActivity(c, activity.Entry{Kind: activity.KindAssignment, OrganizationID: a.OrganizationID, Subject: a})
	c.JSON(http.StatusCreated, a)
}
