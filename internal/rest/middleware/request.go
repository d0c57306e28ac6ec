package middleware

import (
	"github.com/gin-gonic/gin"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// RequestIDMiddleware tags every request with an id, echoed back in the
// response headers.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx = types.SetRequestID(ctx, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// SchoolContextMiddleware scopes the request to one school. Every data
// access filters by the school carried here, so a missing header is a
// hard failure.
func SchoolContextMiddleware(c *gin.Context) {
	schoolID := c.GetHeader(types.HeaderSchoolID)
	if schoolID == "" {
		c.Error(ierr.NewError("missing school header").
			WithHintf("The %s header is required", types.HeaderSchoolID).
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}

	ctx := types.SetSchoolID(c.Request.Context(), schoolID)
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
