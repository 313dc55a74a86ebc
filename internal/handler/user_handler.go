package handler

import (
	"errors"
	"net/http"
	"time"

	"Itemizer/internal/middleware"
	"Itemizer/internal/pkg"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc    *service.UserService
	secure bool
	// links on rendered pages
	baseURL   string
	clientURL string
}

// SignupReq is the body of POST /signup.
type SignupReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginReq struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type ForgotReq struct {
	Email string `json:"email" binding:"required"`
}

// ResetReq is the body of PATCH /reset_password/:email.
type ResetReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type PasswordReq struct {
	Password string `json:"password" binding:"required"`
}

func NewUserHandler(svc *service.UserService, secure bool, baseURL, clientURL string) *UserHandler {
	return &UserHandler{svc: svc, secure: secure, baseURL: baseURL, clientURL: clientURL}
}

func (h *UserHandler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secure, true)
}

// Signup creates an unverified account and mails the confirmation link.
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	_, err := h.svc.Signup(c.Request.Context(), service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "A confirmation email has been sent via email."})
}

func (h *UserHandler) page(c *gin.Context, code int, tmpl string, data any) {
	html, err := pkg.Render(tmpl, data)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	c.Data(code, "text/html; charset=utf-8", []byte(html))
}

func (h *UserHandler) Confirm(c *gin.Context) {
	user, err := h.svc.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		h.page(c, status(err, http.StatusForbidden), "result_page.html", pkg.ResultPageData{
			Title:   "Confirmation failed",
			Message: "The confirmation link is invalid or has expired.",
			HomeURL: h.clientURL,
		})
		return
	}
	h.page(c, http.StatusOK, "result_page.html", pkg.ResultPageData{
		Title:   "Email confirmed",
		Message: "Thank you, " + user.Username + ". Your account is now active and you may log in.",
		HomeURL: h.clientURL,
	})
}

// Login checks credentials and sets the session cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, token, err := h.svc.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		createFailed(c, err)
		return
	}
	h.setSession(c, token, int(pkg.SessionTTL/time.Second))
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.svc.Logout(c.Request.Context(), userID); err != nil {
		createFailed(c, err)
		return
	}
	h.setSession(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) CheckSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized! Please log in to continue."})
		return
	}
	user, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req ForgotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No account is registered with that email."})
			return
		}
		createFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ResetPasswordForm(c *gin.Context) {
	token := c.Param("token")
	email, err := h.svc.CheckResetToken(token)
	if err != nil {
		_ = c.Error(err)
		h.page(c, http.StatusForbidden, "result_page.html", pkg.ResultPageData{
			Title:   "Reset link expired",
			Message: "The reset link is invalid or has expired. Please request a new one.",
			HomeURL: h.clientURL,
		})
		return
	}
	h.page(c, http.StatusOK, "reset_password_form.html", pkg.ResetFormData{
		Email:  email,
		Token:  token,
		Action: h.baseURL + "/reset_password/" + email,
	})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), c.Param("email"), req.Token, req.NewPassword); err != nil {
		createFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateCurrent patches the session user. The body carries the current
// password and optionally new_password next to the profile fields.
func (h *UserHandler) UpdateCurrent(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusNotModified, gin.H{"error": msgNotModified})
		return
	}
	password, _ := body["password"].(string)
	newPassword, _ := body["new_password"].(string)

	user, err := h.svc.UpdateCurrent(c.Request.Context(), middleware.CurrentUser(c), password, newPassword, body)
	if err != nil {
		patchFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteCurrent(c *gin.Context) {
	var req PasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Incorrect password."})
		return
	}
	if err := h.svc.DeleteCurrent(c.Request.Context(), middleware.CurrentUser(c), req.Password); err != nil {
		createFailed(c, err)
		return
	}
	h.setSession(c, "", -1)
	c.Status(http.StatusNoContent)
}
