package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"Itemizer/internal/model"
	"Itemizer/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err    error
		create int
		patch  int
	}{
		{service.ErrNotFound, http.StatusNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: gone", service.ErrUnauthorized), http.StatusUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: owner only", service.ErrForbidden), http.StatusForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: name taken", service.ErrConflict), http.StatusUnprocessableEntity, http.StatusNotModified},
		{&model.ValidationError{Field: "name", Msg: "empty"}, http.StatusUnprocessableEntity, http.StatusNotModified},
		{errors.New("boom"), http.StatusInternalServerError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.create, status(tc.err, http.StatusUnprocessableEntity), tc.err.Error())
		assert.Equal(t, tc.patch, status(tc.err, http.StatusNotModified), tc.err.Error())
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "owner only", message(fmt.Errorf("%w: owner only", service.ErrForbidden)))
	assert.Equal(t, "record not found", message(service.ErrNotFound))
	assert.Equal(t, "name - empty", message(&model.ValidationError{Field: "name", Msg: "empty"}))
}
