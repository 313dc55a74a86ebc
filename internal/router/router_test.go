package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"Itemizer/internal/middleware"
	"Itemizer/internal/model"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"
	"Itemizer/internal/repository/redis"
	"Itemizer/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingMailer struct {
	mu      sync.Mutex
	subject []string
	html    []string
}

func (m *recordingMailer) Send(subject string, _ []string, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subject = append(m.subject, subject)
	m.html = append(m.html, html)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subject)
}

type app struct {
	t      *testing.T
	db     *gorm.DB
	mailer *recordingMailer
	engine *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := rdb.InitDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, rdb.AutoMigrate(db))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	signer := pkg.NewSigner("test-secret", "test-salt")
	sessions := &redis.SessionRepository{Client: client}
	mailer := &recordingMailer{}
	svc := service.New(service.Deps{
		DB:       db,
		Sessions: sessions,
		Signer:   signer,
		Mailer:   mailer,
		Email:    service.EmailConfig{BaseURL: "http://api.test", ClientURL: "http://client.test", Support: "support@test"},
		Log:      log,
	})
	engine := InitRouter(Deps{
		Services:  svc,
		Users:     &rdb.UserRepository{DB: db},
		Sessions:  sessions,
		Limiter:   &redis.RateLimitRepository{Client: client},
		Signer:    signer,
		Metrics:   prometheus.NewRegistry(),
		Log:       log,
		BaseURL:   "http://api.test",
		ClientURL: "http://client.test",
	})
	return &app{t: t, db: db, mailer: mailer, engine: engine}
}

func (a *app) do(method, path string, body any, session string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session})
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// user inserts an account whose password is "password123".
func (a *app) user(name string, verified, banned bool) *model.User {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(a.t, err)
	u := &model.User{Username: name, Email: name + "@test", Password: string(hash), IsVerified: verified, IsBanned: banned}
	require.NoError(a.t, (&rdb.UserRepository{DB: a.db}).Create(context.Background(), u))
	return u
}

func (a *app) login(name string) string {
	a.t.Helper()
	a.user(name, true, false)
	w := a.do(http.MethodPost, "/login", map[string]any{"username_or_email": name, "password": "password123"}, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	a.t.Fatal("no session cookie")
	return ""
}

func (a *app) createOrg(session, name string) model.Membership {
	a.t.Helper()
	w := a.do(http.MethodPost, "/organizations", map[string]any{"name": name}, session)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Membership](a.t, w)
}

func (a *app) createItem(session, name string) model.Item {
	a.t.Helper()
	w := a.do(http.MethodPost, "/items", map[string]any{"name": name, "part_number": "PN-" + name}, session)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Item](a.t, w)
}

func (a *app) logs(session string, orgID uint64) []model.OrganizationLog {
	a.t.Helper()
	w := a.do(http.MethodGet, "/organizations/"+id(orgID)+"/logs", nil, session)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[[]model.OrganizationLog](a.t, w)
}

func id(v uint64) string { return strconv.FormatUint(v, 10) }

func TestSignup(t *testing.T) {
	a := newApp(t)
	body := map[string]any{"username": "jdoe1234", "email": "j@x.com", "password": "Abc123!!"}

	w := a.do(http.MethodPost, "/signup", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"A confirmation email has been sent via email."}`, w.Body.String())
	assert.Equal(t, 1, a.mailer.count())

	w = a.do(http.MethodPost, "/signup", body, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, a.mailer.count())
}

func TestLoginRequiresVerifiedUnbannedUser(t *testing.T) {
	a := newApp(t)
	a.user("pending", false, false)
	a.user("banned", true, true)

	for _, name := range []string{"pending", "banned"} {
		w := a.do(http.MethodPost, "/login", map[string]any{"username_or_email": name, "password": "password123"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}

	session := a.login("alice")
	w := a.do(http.MethodGet, "/check_session", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[model.User](t, w).Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodDelete, "/logout", nil, session)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/check_session", nil, session)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	a := newApp(t)
	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		w := a.do(http.MethodPost, "/login", map[string]any{"username_or_email": "ghost", "password": "password123"}, "")
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{401, 401, 401, 401, 401, 429}, codes)
}

func TestProtectedRoutes(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/items", "/organizations", "/memberships", "/current_user"} {
		method := http.MethodGet
		if path == "/current_user" {
			method = http.MethodPatch
		}
		w := a.do(method, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.JSONEq(t, `{"error":"Unauthorized! Please log in to continue."}`, w.Body.String())
	}

	w := a.do(http.MethodGet, "/items", nil, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordNotFound(t *testing.T) {
	a := newApp(t)
	session := a.login("alice")

	w := a.do(http.MethodGet, "/items/999", nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item record of id, 999, does not exist. Please try again later."}`, w.Body.String())

	w = a.do(http.MethodDelete, "/organizations/abc", nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Organization record of id, abc, does not exist. Please try again later."}`, w.Body.String())
}

func TestAssignmentsAndLogs(t *testing.T) {
	a := newApp(t)
	session := a.login("alice")
	owner := a.createOrg(session, "Robotics")
	assert.Equal(t, model.RoleOwner, owner.Role)
	item := a.createItem(session, "Servo")

	w := a.do(http.MethodPost, "/assignments", map[string]any{
		"item_id": item.ID, "organization_id": owner.OrganizationID, "current_quantity": -1, "enough_threshold": 5,
	}, session)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Item count must be a non-negative integer.")

	w = a.do(http.MethodPost, "/assignments", map[string]any{
		"item_id": item.ID, "organization_id": owner.OrganizationID, "current_quantity": 0, "enough_threshold": 5,
	}, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assignment := decode[model.Assignment](t, w)

	w = a.do(http.MethodPost, "/assignments", map[string]any{
		"item_id": item.ID, "organization_id": owner.OrganizationID, "current_quantity": 1, "enough_threshold": 1,
	}, session)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodPatch, "/assignments/"+id(assignment.ID), map[string]any{"current_quantity": -3}, session)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = a.do(http.MethodPatch, "/assignments/"+id(assignment.ID), map[string]any{"current_quantity": 9}, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 9, decode[model.Assignment](t, w).CurrentQuantity)

	logs := a.logs(session, owner.OrganizationID)
	require.Len(t, logs, 3)
	assert.Equal(t, []string{"Item assignment updated.", "Name: Servo", "Current quantity: 9", "Enough threshold: 5"}, []string(logs[0].Contents))
	assert.Equal(t, `An item has been assigned by user, "alice", to this organization`, logs[1].Contents[0])
	assert.Equal(t, `User, "alice", created a new organization: "Robotics".`, logs[2].Contents[0])
}

func TestDeleteItemLogsEachOrganization(t *testing.T) {
	a := newApp(t)
	session := a.login("alice")
	first := a.createOrg(session, "Robotics")
	second := a.createOrg(session, "Drones")

	w := a.do(http.MethodPost, "/add_new_item", map[string]any{
		"name": "Servo", "part_number": "SG90", "organization_id": first.OrganizationID,
		"current_quantity": 2, "enough_threshold": 1,
	}, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Item       model.Item       `json:"item"`
		Assignment model.Assignment `json:"assignment"`
	}](t, w)

	w = a.do(http.MethodPost, "/assignments", map[string]any{
		"item_id": created.Item.ID, "organization_id": second.OrganizationID, "current_quantity": 1, "enough_threshold": 1,
	}, session)
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodDelete, "/items/"+id(created.Item.ID), nil, session)
	require.Equal(t, http.StatusNoContent, w.Code)

	for _, m := range []model.Membership{first, second} {
		logs := a.logs(session, m.OrganizationID)
		require.NotEmpty(t, logs)
		assert.True(t, strings.HasPrefix(logs[0].Contents[0], "The owner of an item this organization uses has removed it from the system"))
		assert.Equal(t, "Part #: SG90", logs[0].Contents[2])
	}

	w = a.do(http.MethodGet, "/assignments/"+id(created.Assignment.ID), nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizationCascadeAndOwnership(t *testing.T) {
	a := newApp(t)
	alice := a.login("alice")
	bob := a.login("bob")
	owner := a.createOrg(alice, "Robotics")
	orgPath := "/organizations/" + id(owner.OrganizationID)

	w := a.do(http.MethodPost, orgPath+"/invite", map[string]any{}, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	link := decode[map[string]string](t, w)["invitation_url"]
	token := strings.TrimPrefix(link, "http://client.test/invitation/")

	w = a.do(http.MethodPost, "/invitation/"+token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(http.MethodPost, "/invitation/"+token, nil, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	member := decode[model.Membership](t, w)
	assert.Equal(t, model.RoleRegular, member.Role)

	w = a.do(http.MethodDelete, "/memberships/"+id(owner.ID), nil, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, "/memberships/"+id(member.ID), map[string]any{"role": "OWNER"}, alice)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = a.do(http.MethodPatch, "/transfer_ownership/"+id(owner.OrganizationID), map[string]any{"admin_id": member.ID}, alice)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodPatch, "/memberships/"+id(member.ID), map[string]any{"role": "ADMIN"}, alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPatch, "/transfer_ownership/"+id(owner.OrganizationID), map[string]any{"admin_id": member.ID}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, "/transfer_ownership/"+id(owner.OrganizationID), map[string]any{"admin_id": member.ID}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.RoleOwner, decode[model.Membership](t, w).Role)

	logs := a.logs(bob, owner.OrganizationID)
	require.Len(t, logs, 4)
	assert.Equal(t, `User, "alice", has transferred ownership of this organization to user, "bob".`, logs[0].Contents[0])
	assert.Equal(t, `User, "bob", has been promoted to ADMIN by admin, "alice".`, logs[1].Contents[0])
	assert.Equal(t, `User, "bob", joined this organization.`, logs[2].Contents[0])

	w = a.do(http.MethodDelete, orgPath, nil, bob)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/memberships/"+id(member.ID), nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, a.db.Model(&model.OrganizationLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRequestsFlow(t *testing.T) {
	a := newApp(t)
	alice := a.login("alice")
	owner := a.createOrg(alice, "Robotics")
	a.user("carol", true, false)

	w := a.do(http.MethodPost, "/requests", map[string]any{
		"organization_id": owner.OrganizationID, "username_or_email": "carol", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/requests", map[string]any{
		"organization_id": owner.OrganizationID, "username_or_email": "carol", "password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := decode[model.Request](t, w)

	// only submission is open without a session
	w = a.do(http.MethodGet, "/requests", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "carol")
	w = a.do(http.MethodGet, "/requests", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Request](t, w), 1)
	assert.Equal(t, model.DefaultReasonToJoin, req.ReasonToJoin)

	w = a.do(http.MethodPost, "/accept_request", map[string]any{"request_id": req.ID}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/requests/"+id(req.ID), nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)

	logs := a.logs(alice, owner.OrganizationID)
	require.Len(t, logs, 3)
	assert.Equal(t, `User, "carol", joined this organization.`, logs[0].Contents[0])
	assert.Equal(t, `User, "carol", has requested to join this organization.`, logs[1].Contents[0])
}

func TestCurrentUser(t *testing.T) {
	a := newApp(t)
	session := a.login("alice")

	w := a.do(http.MethodPatch, "/current_user", map[string]any{"password": "nope", "first_name": "Al"}, session)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, "/current_user", map[string]any{"password": "password123", "email": "no-at-sign"}, session)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = a.do(http.MethodPatch, "/current_user", map[string]any{"password": "password123", "first_name": "Alice"}, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[model.User](t, w).FirstName)

	a.createOrg(session, "Robotics")
	w = a.do(http.MethodDelete, "/current_user", map[string]any{"password": "password123"}, session)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newApp(t)
	a.do(http.MethodGet, "/", nil, "")
	w := a.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "itemizer_http_requests_total")
}
