package middleware

import (
	"strings"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body written for a failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Display   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error attached to the context. The status
// follows the error's sentinel and the message its first hint.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatusFromErr(err), ErrorResponse{
			Error: ErrorDetail{
				Display:   displayMessage(err),
				RequestID: types.GetRequestID(c.Request.Context()),
				Details:   ierr.GetReportableDetails(err),
			},
		})
	}
}

func displayMessage(err error) string {
	for _, hint := range ierr.GetHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return "An unexpected error occurred"
}
