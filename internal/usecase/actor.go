package usecase

import (
	"context"

	"masters-marketplace/internal/delivery/http/middleware"
)

// actor is the authenticated caller of a usecase.
type actor struct {
	ID      uint
	IsStaff bool
}

func actorFromContext(ctx context.Context) (actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return actor{}, false
	}
	return actor{ID: userID, IsStaff: middleware.IsStaffFromContext(ctx)}, true
}

// auditUserID is the audit log actor, nil for anonymous calls.
func auditUserID(ctx context.Context) *uint {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &userID
}
