package service

import (
	"context"
	"sync"
	"testing"

	"Itemizer/internal/model"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"
	"Itemizer/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type sentMail struct {
	Subject    string
	Recipients []string
	HTML       string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(subject string, recipients []string, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Subject: subject, Recipients: recipients, HTML: html})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type testEnv struct {
	db     *gorm.DB
	redis  *miniredis.Miniredis
	mailer *recordingMailer
	signer *pkg.Signer
	svc    *Services
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := rdb.InitDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, rdb.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := &testEnv{
		db:     db,
		redis:  mr,
		mailer: &recordingMailer{},
		signer: pkg.NewSigner("test-secret", "test-salt"),
	}
	env.svc = New(Deps{
		DB:       db,
		Sessions: &redis.SessionRepository{Client: client},
		Signer:   env.signer,
		Mailer:   env.mailer,
		Email: EmailConfig{
			BaseURL:   "http://api.test",
			ClientURL: "http://client.test",
			Support:   "support@itemizer.test",
		},
		Log: zaptest.NewLogger(t),
	})
	return env
}

// user inserts a verified user whose password is "password123".
func (e *testEnv) user(t *testing.T, username string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Username:   username,
		Email:      username + "@itemizer.test",
		Password:   string(hash),
		IsVerified: true,
	}
	require.NoError(t, (&rdb.UserRepository{DB: e.db}).Create(context.Background(), u))
	return u
}

// org creates an organization owned by owner.
func (e *testEnv) org(t *testing.T, owner *model.User, name string) *model.Organization {
	t.Helper()
	m, err := e.svc.Organizations.Create(context.Background(), owner, OrganizationInput{Name: name})
	require.NoError(t, err)
	return m.Organization
}

func (e *testEnv) item(t *testing.T, owner *model.User, name string) *model.Item {
	t.Helper()
	item, err := e.svc.Items.Create(context.Background(), owner, ItemInput{Name: name, PartNumber: "PN-" + name})
	require.NoError(t, err)
	return item
}

func (e *testEnv) logs(t *testing.T, orgID uint64) []model.OrganizationLog {
	t.Helper()
	list, err := e.svc.Logs.ListByOrg(context.Background(), orgID)
	require.NoError(t, err)
	return list
}
