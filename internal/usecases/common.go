package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// hiddenFrom is the error for an entity that exists but that v may not see.
// It is indistinguishable from a missing one.
func hiddenFrom(what string) error {
	return apperr.NotFound(what + " not found")
}

// prepareDMCreate runs the checks shared by DM-only entity creation.
func prepareDMCreate(v access.Viewer, in any, vis *entities.Visibility, audit *entities.Audit) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if err := entities.Validate(in); err != nil {
		return err
	}
	if err := access.CheckVisibility(vis, entities.VisibilityDMOnly); err != nil {
		return err
	}
	audit.CreatedBy = v.UserID
	return nil
}

// prepareUpdate carries the immutable audit fields over from the stored row
// and keeps its visibility when the request leaves it empty.
func prepareUpdate(v access.Viewer, in any, vis *entities.Visibility, audit *entities.Audit, existingVis entities.Visibility, existing entities.Audit) error {
	if err := entities.Validate(in); err != nil {
		return err
	}
	if err := access.CheckVisibility(vis, existingVis); err != nil {
		return err
	}
	editor := v.UserID
	audit.CreatedBy = existing.CreatedBy
	audit.CreatedAt = existing.CreatedAt
	audit.UpdatedBy = &editor
	return nil
}

// requireParticipant checks that userID belongs to the campaign, for fields
// that assign something to a user.
func requireParticipant(ctx context.Context, campaigns access.MembershipLookup, campaignID, userID int) error {
	role, err := access.NewResolver(campaigns).Resolve(ctx, campaignID, userID)
	if err != nil {
		return err
	}
	if role == entities.RoleNone {
		return apperr.Validation("assigned user is not a participant of this campaign")
	}
	return nil
}

// requireEntity turns a missing referenced entity into a Validation error.
func requireEntity(ctx context.Context, lookup interfaces.EntityLookup, campaignID int, t entities.EntityType, id int) (*entities.VisibilityInfo, error) {
	if !t.Valid() {
		return nil, apperr.Validation("unknown entity type " + string(t))
	}
	info, err := lookup.GetVisibilityInfo(ctx, campaignID, t, id)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.Validation("referenced " + string(t) + " does not exist in this campaign")
		}
		return nil, err
	}
	return info, nil
}

// removeFiles drops an entity's uploaded images from storage after the rows
// are gone.
func removeFiles(files interfaces.FileStorage, campaignID int, t entities.EntityType, id int) error {
	if files == nil {
		return nil
	}
	return files.RemoveEntity(campaignID, t, id)
}

// requireVisibleEntity reports NotFound unless the entity exists in v's
// campaign and v may see it.
func requireVisibleEntity(ctx context.Context, lookup interfaces.EntityLookup, v access.Viewer, t entities.EntityType, id int) error {
	if err := access.RequireMember(v); err != nil {
		return err
	}
	if !t.Valid() {
		return apperr.Validation("unknown entity type " + string(t))
	}
	info, err := lookup.GetVisibilityInfo(ctx, v.CampaignID, t, id)
	if err != nil {
		return err
	}
	if !access.CanSeeInfo(v, *info) {
		return hiddenFrom(string(t))
	}
	return nil
}

// requireManagedEntity is the write-side check for attachments: DM only, and
// the entity only has to exist, so a DM can still manage hidden entities.
func requireManagedEntity(ctx context.Context, lookup interfaces.EntityLookup, v access.Viewer, t entities.EntityType, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if !t.Valid() {
		return apperr.Validation("unknown entity type " + string(t))
	}
	_, err := lookup.GetVisibilityInfo(ctx, v.CampaignID, t, id)
	return err
}
