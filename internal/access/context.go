package access

import (
	"context"

	"loremaster/internal/entities"
)

// Identity is the authenticated caller as asserted by a verified bearer token.
type Identity struct {
	UserID   int
	Username string
}

// Viewer is the caller's resolved standing in one campaign. It is computed once
// per request and passed down by value.
type Viewer struct {
	CampaignID int
	UserID     int
	Role       entities.Role
}

func (v Viewer) IsDM() bool     { return v.Role == entities.RoleDM }
func (v Viewer) IsPlayer() bool { return v.Role == entities.RolePlayer }

type identityContextKey struct{}
type viewerContextKey struct{}

// WithIdentity stores the authenticated identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// WithViewer stores the resolved campaign viewer in ctx.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, viewerContextKey{}, v)
}

// ViewerFromContext returns the viewer stored by WithViewer.
func ViewerFromContext(ctx context.Context) (Viewer, bool) {
	if ctx == nil {
		return Viewer{}, false
	}
	v, ok := ctx.Value(viewerContextKey{}).(Viewer)
	return v, ok
}
