package presenter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/totegamma/engaja/internal/domain"
)

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ValidationError{Field: "title", Reason: "required"}, http.StatusBadRequest},
		{errors.Wrap(domain.ErrPermissionDenied, "respond"), http.StatusForbidden},
		{domain.NotFoundError{Resource: "issue"}, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		assert.NoError(t, Error(c, tc.err))
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	assert.NoError(t, InternalError(c, errors.New("dsn password=hunter2")))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}
