package middleware

import (
	"context"
	"net/http"

	"Itemizer/internal/activity"
	"Itemizer/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextActivityKey = "activity"

// ActivityRecorder persists organization logs.
type ActivityRecorder interface {
	Record(ctx context.Context, orgID uint64, contents []string) (*model.OrganizationLog, error)
}

// SetActivity tags the request with the entry the activity logger formats
// once the handler succeeds.
func SetActivity(c *gin.Context, e activity.Entry) {
	c.Set(ContextActivityKey, e)
}

// ActivityLogger writes an organization log for every successful non-GET
// request that carries an activity entry.
func ActivityLogger(reg *activity.Registry, recorder ActivityRecorder, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		method := c.Request.Method
		status := c.Writer.Status()
		if method == http.MethodGet || status < 200 || status > 299 {
			return
		}
		v, ok := c.Get(ContextActivityKey)
		if !ok {
			return
		}
		entry, ok := v.(activity.Entry)
		if !ok {
			return
		}

		contents, err := reg.Format(entry, method, CurrentUser(c))
		if err != nil {
			log.Error("format activity",
				zap.String("kind", string(entry.Kind)),
				zap.String("method", method),
				zap.String("route", c.FullPath()),
				zap.Error(err))
			return
		}
		if _, err := recorder.Record(c.Request.Context(), entry.OrganizationID, contents); err != nil {
			log.Error("record activity", zap.Uint64("organization_id", entry.OrganizationID), zap.Error(err))
		}
	}
}
