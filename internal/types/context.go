package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxSchoolID  ContextKey = "ctx_school_id"
	CtxUserID    ContextKey = "ctx_user_id"

	// Default values
	DefaultSchoolID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetSchoolID(ctx context.Context) string {
	if schoolID, ok := ctx.Value(CtxSchoolID).(string); ok {
		return schoolID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetSchoolID sets the school ID in the context
func SetSchoolID(ctx context.Context, schoolID string) context.Context {
	return context.WithValue(ctx, CtxSchoolID, schoolID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// ValidateSchoolContext validates that the required school context fields are present
func ValidateSchoolContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}

	schoolID := GetSchoolID(ctx)
	if schoolID == "" {
		return fmt.Errorf("no school context found in context")
	}

	return nil
}
