package access

import (
	"context"
	"errors"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// MembershipLookup is the storage the resolver needs.
type MembershipLookup interface {
	// GetCampaignOwner returns the owner's user id, or an apperr NotFound.
	GetCampaignOwner(ctx context.Context, campaignID int) (int, error)
	// GetParticipantRole returns the stored role, or RoleNone when no row exists.
	GetParticipantRole(ctx context.Context, campaignID, userID int) (entities.Role, error)
}

// Resolver computes a user's effective role in a campaign. Ownership is checked
// first and always yields dm, whatever the participant table says.
type Resolver struct {
	store MembershipLookup
}

func NewResolver(store MembershipLookup) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns dm, player, or RoleNone. A missing campaign is RoleNone.
func (r *Resolver) Resolve(ctx context.Context, campaignID, userID int) (entities.Role, error) {
	ownerID, err := r.store.GetCampaignOwner(ctx, campaignID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return entities.RoleNone, nil
		}
		return entities.RoleNone, err
	}
	if ownerID == userID {
		return entities.RoleDM, nil
	}

	role, err := r.store.GetParticipantRole(ctx, campaignID, userID)
	if err != nil {
		return entities.RoleNone, err
	}
	if !role.Valid() {
		return entities.RoleNone, nil
	}
	return role, nil
}

// Viewer resolves the role and packages it as a Viewer.
func (r *Resolver) Viewer(ctx context.Context, campaignID, userID int) (Viewer, error) {
	role, err := r.Resolve(ctx, campaignID, userID)
	if err != nil {
		return Viewer{}, err
	}
	return Viewer{CampaignID: campaignID, UserID: userID, Role: role}, nil
}
