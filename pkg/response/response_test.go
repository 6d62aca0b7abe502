package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/lablinker/pkg/apperr"
)

func init() { gin.SetMode(gin.TestMode) }

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	var body Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestError_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.New(apperr.InvalidInput, "email is required"), http.StatusBadRequest, "email is required"},
		{apperr.New(apperr.InvalidCredential, "invalid credentials"), http.StatusBadRequest, "invalid credentials"},
		{apperr.New(apperr.Conflict, "email taken"), http.StatusBadRequest, "email taken"},
		{apperr.New(apperr.NotFound, "post not found"), http.StatusNotFound, "post not found"},
		{apperr.New(apperr.Forbidden, "nope"), http.StatusForbidden, "nope"},
		{apperr.New(apperr.Unauthorized, "login"), http.StatusUnauthorized, "login"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		w, body := run(t, func(c *gin.Context) { Error(c, tc.err) })
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.msg, body.Message)
	}
}

func TestSuccessAndCreated(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Success(c, gin.H{"a": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body.Message)

	w, _ = run(t, func(c *gin.Context) { Created(c, nil) })
	assert.Equal(t, http.StatusCreated, w.Code)
}
