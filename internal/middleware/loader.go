package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const ContextRecordKey = "record"

// RecordSource loads one entity by id for the record loader.
type RecordSource struct {
	Name string
	Load func(ctx context.Context, id uint64) (any, error)
}

// RecordLoader loads the record addressed by :id for every route pattern in
// table and stashes it, or answers 404.
func RecordLoader(table map[string]RecordSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		src, ok := table[c.FullPath()]
		if !ok {
			c.Next()
			return
		}
		raw := c.Param("id")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err == nil && id > 0 {
			var rec any
			if rec, err = src.Load(c.Request.Context(), id); err == nil {
				c.Set(ContextRecordKey, rec)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("%s record of id, %s, does not exist. Please try again later.", src.Name, raw),
		})
	}
}

// Record returns the record stashed by RecordLoader.
func Record[E any](c *gin.Context) (*E, bool) {
	v, ok := c.Get(ContextRecordKey)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*E)
	return rec, ok
}
