package router

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"Itemizer/internal/activity"
	"Itemizer/internal/handler"
	"Itemizer/internal/middleware"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"
	"Itemizer/internal/repository/redis"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Services  *service.Services
	Users     *rdb.UserRepository
	Sessions  *redis.SessionRepository
	Limiter   middleware.Counter
	Signer    *pkg.Signer
	Metrics   *prometheus.Registry
	Log       *zap.Logger
	Secure    bool
	BaseURL   string
	ClientURL string
	StaticDir string

	LoginLimit  int64
	LoginWindow time.Duration
}

// Whitelist holds the routes served without a session.
var Whitelist = []string{
	"/",
	"/assets/*filepath",
	"/signup",
	"/login",
	"/check_session",
	"/confirm/:token",
	"/contact",
	"/invitation/:token",
	"POST /requests",
	"/forgot_password",
	"/reset_password_form/:token",
	"/reset_password/:email",
	"/metrics",
}

func source[E any, P service.Entity[E]](name string, crud *service.CrudService[E, P]) middleware.RecordSource {
	return middleware.RecordSource{Name: name, Load: func(ctx context.Context, id uint64) (any, error) {
		return crud.Get(ctx, id)
	}}
}

// records is the record loader table, keyed by route pattern.
func records(s *service.Services) map[string]middleware.RecordSource {
	org := source("Organization", s.Organizations.Crud)
	return map[string]middleware.RecordSource{
		"/users/:id":                source("User", s.Users.Crud),
		"/items/:id":                source("Item", s.Items.Crud),
		"/organizations/:id":        org,
		"/organizations/:id/logs":   org,
		"/organizations/:id/invite": org,
		"/organizations/:id/report": org,
		"/memberships/:id":          source("Membership", s.Memberships.Crud),
		"/assignments/:id":          source("Assignment", s.Assignments.Crud),
		"/requests/:id":             source("Request", s.Requests.Crud),
	}
}

func InitRouter(d Deps) *gin.Engine {
	s := d.Services
	limit, window := d.LoginLimit, d.LoginWindow
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}

	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.Logger(d.Log))
	if d.Metrics != nil {
		r.Use(middleware.NewMetrics(d.Metrics).Handler())
	}
	r.Use(
		middleware.SessionGate(d.Signer, d.Sessions, d.Users, Whitelist),
		middleware.RecordLoader(records(s)),
		middleware.ActivityLogger(activity.MustRegistry(activity.DefaultTable()), s.Logs, d.Log),
	)

	if d.StaticDir != "" {
		r.Static("/assets", filepath.Join(d.StaticDir, "assets"))
		r.GET("/", func(c *gin.Context) { c.File(filepath.Join(d.StaticDir, "index.html")) })
	} else {
		r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"name": "itemizer"}) })
	}

	user := handler.NewUserHandler(s.Users, d.Secure, d.BaseURL, d.ClientURL)
	org := handler.NewOrganizationHandler(s.Organizations, s.Memberships, s.Logs)
	item := handler.NewItemHandler(s.Items, s.Assignments)
	request := handler.NewRequestHandler(s.Requests, s.Users)
	contact := handler.NewContactHandler(s.Email)

	users := handler.NewResource(s.Users.Crud, "")
	organizations := handler.NewResource(s.Organizations.Crud, activity.KindOrganization, http.MethodPatch)
	items := handler.NewResource(s.Items.Crud, "")
	assignments := handler.NewResource(s.Assignments.Crud, activity.KindAssignment, http.MethodPatch, http.MethodDelete)
	memberships := handler.NewResource(s.Memberships.Crud, activity.KindMembership, http.MethodPatch, http.MethodDelete)
	requests := handler.NewResource(s.Requests.Crud, activity.KindRequest, http.MethodDelete)

	// accounts
	r.POST("/signup", user.Signup)
	r.GET("/confirm/:token", user.Confirm)
	login := []gin.HandlerFunc{user.Login}
	if d.Limiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(d.Limiter, "login", limit, window, d.Log)}, login...)
	}
	r.POST("/login", login...)
	r.DELETE("/logout", user.Logout)
	r.GET("/check_session", user.CheckSession)
	r.POST("/forgot_password", user.ForgotPassword)
	r.GET("/reset_password_form/:token", user.ResetPasswordForm)
	r.PATCH("/reset_password/:email", user.ResetPassword)
	r.PATCH("/current_user", user.UpdateCurrent)
	r.DELETE("/current_user", user.DeleteCurrent)
	r.GET("/users", users.Get)
	r.GET("/users/:id", users.Get)

	r.GET("/organizations", organizations.Get)
	r.POST("/organizations", org.Create)
	r.GET("/organizations/:id", organizations.Get)
	r.PATCH("/organizations/:id", organizations.Patch)
	r.DELETE("/organizations/:id", organizations.Delete)
	r.GET("/organizations/:id/logs", org.Logs)
	r.POST("/organizations/:id/invite", org.Invite)
	r.POST("/organizations/:id/report", org.Report)
	r.PATCH("/transfer_ownership/:org_id", org.TransferOwnership)

	r.GET("/items", items.Get)
	r.POST("/items", item.Create)
	r.POST("/add_new_item", item.AddNewItem)
	r.GET("/items/:id", items.Get)
	r.PATCH("/items/:id", items.Patch)
	r.DELETE("/items/:id", items.Delete)
	r.POST("/report_item", item.Report)

	r.GET("/assignments", assignments.Get)
	r.POST("/assignments", item.Assign)
	r.GET("/assignments/:id", assignments.Get)
	r.PATCH("/assignments/:id", assignments.Patch)
	r.DELETE("/assignments/:id", assignments.Delete)

	r.GET("/memberships", memberships.Get)
	r.GET("/memberships/:id", memberships.Get)
	r.PATCH("/memberships/:id", memberships.Patch)
	r.DELETE("/memberships/:id", memberships.Delete)
	r.GET("/invitation/:token", org.Invitation)
	r.POST("/invitation/:token", org.AcceptInvitation)
	r.POST("/accept_request", org.AcceptRequest)

	r.GET("/requests", requests.Get)
	r.POST("/requests", request.Submit)
	r.GET("/requests/:id", requests.Get)
	r.DELETE("/requests/:id", requests.Delete)

	r.POST("/contact", contact.Contact)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	return r
}
