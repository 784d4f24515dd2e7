package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, APIError) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Respond(c, err)

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespond_MapsKindsToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("taken"), http.StatusConflict},
		{Auth("", "nope"), http.StatusUnauthorized},
		{NotFoundError("missing"), http.StatusNotFound},
		{Unavailable("off"), http.StatusServiceUnavailable},
		{stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w, _ := respond(t, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestRespond_WrappedSentinelKeepsDetails(t *testing.T) {
	sentinel := Validation("password is too weak")
	err := fmt.Errorf("register: %w", sentinel.WithDetails([]string{"One number"}))

	assert.True(t, stderrors.Is(err, sentinel))
	assert.Equal(t, KindValidation, KindOf(err))

	w, body := respond(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password is too weak", body.Message)
	assert.Equal(t, []interface{}{"One number"}, body.Details)
}

func TestRespond_InternalErrorHidesMessage(t *testing.T) {
	_, body := respond(t, stderrors.New("dial tcp: connection refused"))
	assert.Equal(t, ErrCodeInternalError, body.Code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestResponders_DefaultMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		send    func(*gin.Context, string)
		status  int
		code    string
		message string
	}{
		{Unauthorized, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required"},
		{BadRequest, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request"},
		{InternalError, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		tc.send(c, "")

		var body APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, tc.message, body.Message)
	}

	assert.Equal(t, "unavailable", KindUnavailable.String())
	assert.Equal(t, "internal", Kind(99).String())
}
