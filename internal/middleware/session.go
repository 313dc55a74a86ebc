package middleware

import (
	"context"
	"net/http"
	"strings"

	"Itemizer/internal/model"
	"Itemizer/internal/pkg"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"

	SessionCookie = "session"
)

const unauthorizedMsg = "Unauthorized! Please log in to continue."

// SessionStore is the live-token store of the session gate.
type SessionStore interface {
	GetUserToken(ctx context.Context, userID uint64) (string, error)
	ExtendUserToken(ctx context.Context, userID uint64) error
}

// UserLoader loads the user behind a session.
type UserLoader interface {
	FindByID(ctx context.Context, id uint64) (*model.User, error)
}

// SessionGate resolves the current user from the session cookie or bearer
// token. Requests without a valid session are rejected unless their route
// is whitelisted. A whitelist entry is either a route pattern, open for
// every method, or "METHOD pattern".
func SessionGate(signer *pkg.Signer, store SessionStore, users UserLoader, whitelist []string) gin.HandlerFunc {
	open := make(map[string]struct{}, len(whitelist))
	for _, p := range whitelist {
		open[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if user, ok := resolveSession(c, signer, store, users); ok {
			c.Set(ContextUserIDKey, user.ID)
			c.Set(ContextUserKey, user)
			c.Next()
			return
		}
		if whitelisted(open, c.Request.Method, c.FullPath()) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMsg})
	}
}

func whitelisted(open map[string]struct{}, method, pattern string) bool {
	if pattern == "" {
		return false
	}
	if _, ok := open[pattern]; ok {
		return true
	}
	_, ok := open[method+" "+pattern]
	return ok
}

func resolveSession(c *gin.Context, signer *pkg.Signer, store SessionStore, users UserLoader) (*model.User, bool) {
	token := sessionToken(c)
	if token == "" {
		return nil, false
	}
	userID, err := signer.ParseSession(token)
	if err != nil {
		return nil, false
	}

	ctx := c.Request.Context()
	// a different stored token means the account logged in elsewhere
	stored, err := store.GetUserToken(ctx, userID)
	if err != nil || stored != token {
		return nil, false
	}
	if err := store.ExtendUserToken(ctx, userID); err != nil {
		return nil, false
	}

	user, err := users.FindByID(ctx, userID)
	if err != nil || user.IsBanned {
		return nil, false
	}
	return user, true
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the user stashed by SessionGate, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
