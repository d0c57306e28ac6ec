package testutil

import (
	"context"

	"github.com/temaribet/temaribet/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetSchoolID(ctx, types.DefaultSchoolID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}
