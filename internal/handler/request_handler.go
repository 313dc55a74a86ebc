package handler

import (
	"net/http"

	"Itemizer/internal/activity"
	"Itemizer/internal/middleware"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requests *service.RequestService
	users    *service.UserService
}

// JoinReq may carry credentials when the caller has no session.
type JoinReq struct {
	OrganizationID  uint64 `json:"organization_id" binding:"required"`
	ReasonToJoin    string `json:"reason_to_join"`
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

func NewRequestHandler(requests *service.RequestService, users *service.UserService) *RequestHandler {
	return &RequestHandler{requests: requests, users: users}
}

func (h *RequestHandler) Submit(c *gin.Context) {
	var req JoinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	if user == nil {
		var err error
		if user, err = h.users.Authenticate(ctx, req.UsernameOrEmail, req.Password); err != nil {
			createFailed(c, err)
			return
		}
	}
	r, err := h.requests.Submit(ctx, user.ID, req.OrganizationID, req.ReasonToJoin)
	if err != nil {
		createFailed(c, err)
		return
	}
	middleware.SetActivity(c, activity.Entry{Kind: activity.KindRequest, OrganizationID: r.OrganizationID, Subject: r})
	c.JSON(http.StatusCreated, r)
}
