package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware, ErrorHandler())
	router.GET("/fail", func(c *gin.Context) {
		c.Error(ierr.NewError("trigger conflict").
			WithHint("Trigger already exists").
			WithReportableDetails(map[string]any{"trigger_name": "sub_1-si_1"}).
			Mark(ierr.ErrAlreadyExists))
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(types.HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(types.HeaderRequestID))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Trigger already exists", body.Error.Display)
	assert.Equal(t, "req-1", body.Error.RequestID)
	assert.Equal(t, "sub_1-si_1", body.Error.Details["trigger_name"])
}
