package handler

import (
	"net/http"
	"slices"

	"Itemizer/internal/activity"
	"Itemizer/internal/middleware"
	"Itemizer/internal/model"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

// Resource serves GET, PATCH and DELETE for one entity on top of the
// generic CRUD service. Records come from the record loader.
type Resource[E any, P service.Entity[E]] struct {
	crud   *service.CrudService[E, P]
	kind   activity.Kind
	logged []string
}

// NewResource builds a resource whose methods listed in logged attach an
// activity entry of kind. An empty kind logs nothing.
func NewResource[E any, P service.Entity[E]](crud *service.CrudService[E, P], kind activity.Kind, logged ...string) *Resource[E, P] {
	return &Resource[E, P]{crud: crud, kind: kind, logged: logged}
}

// Get answers the loaded record, or every record when the route has no id.
func (r *Resource[E, P]) Get(c *gin.Context) {
	if rec, ok := middleware.Record[E](c); ok {
		c.JSON(http.StatusOK, rec)
		return
	}
	list, err := r.crud.List(c.Request.Context())
	if err != nil {
		createFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (r *Resource[E, P]) Patch(c *gin.Context) {
	rec, ok := middleware.Record[E](c)
	if !ok {
		c.JSON(http.StatusNotModified, gin.H{"error": msgNotModified})
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusNotModified, gin.H{"error": msgNotModified})
		return
	}
	updated, err := r.crud.Patch(c.Request.Context(), P(rec), body)
	if err != nil {
		patchFailed(c, err)
		return
	}
	r.tag(c, http.MethodPatch, updated)
	c.JSON(http.StatusOK, updated)
}

func (r *Resource[E, P]) Delete(c *gin.Context) {
	rec, ok := middleware.Record[E](c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	if err := r.crud.Delete(c.Request.Context(), P(rec)); err != nil {
		createFailed(c, err)
		return
	}
	// the snapshot taken before the delete is the subject
	r.tag(c, http.MethodDelete, P(rec))
	c.Status(http.StatusNoContent)
}

func (r *Resource[E, P]) tag(c *gin.Context, method string, rec P) {
	if r.kind == "" || !slices.Contains(r.logged, method) {
		return
	}
	scoped, ok := any(rec).(model.OrgScoped)
	if !ok {
		return
	}
	middleware.SetActivity(c, activity.Entry{Kind: r.kind, OrganizationID: scoped.OrgID(), Subject: rec})
}
