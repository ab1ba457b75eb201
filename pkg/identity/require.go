package identity

import (
	"context"

	apperrors "roombook/pkg/errors"
)

// Require returns the signed-in caller or an Unauthorized error.
func Require(ctx context.Context) (*Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("sign-in required")
	}
	return id, nil
}

// RequireAdmin returns the caller when they are an administrator.
func RequireAdmin(ctx context.Context) (*Identity, error) {
	id, err := Require(ctx)
	if err != nil {
		return nil, err
	}
	if !id.Admin {
		return nil, apperrors.Forbidden("administrator access required")
	}
	return id, nil
}
