package handler

import (
	"context"

	"github.com/curbwise/curbwise/internal/api/middleware"
)

// GetIdentity retrieves the caller identity from the context.
// This is a convenience wrapper around middleware.GetIdentity.
func GetIdentity(ctx context.Context) middleware.Identity {
	return middleware.GetIdentity(ctx)
}
