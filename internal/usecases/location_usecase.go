package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// LocationUsecase keeps the location tree consistent: parents live in the same
// campaign, no location is its own ancestor, and only leaves can be deleted.
type LocationUsecase struct {
	locations interfaces.LocationStore
	files     interfaces.FileStorage
}

func NewLocationUsecase(locations interfaces.LocationStore, files interfaces.FileStorage) *LocationUsecase {
	return &LocationUsecase{locations: locations, files: files}
}

func (uc *LocationUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Location, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.locations.List(ctx, v, f)
}

func (uc *LocationUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.Location, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	l, err := uc.locations.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, l.Visibility) {
		return nil, hiddenFrom("location")
	}
	return l, nil
}

// Children lists the visible direct children of a visible location.
func (uc *LocationUsecase) Children(ctx context.Context, v access.Viewer, id int) ([]entities.Location, error) {
	if _, err := uc.Get(ctx, v, id); err != nil {
		return nil, err
	}
	return uc.locations.List(ctx, v, entities.ListFilter{ParentID: &id})
}

func (uc *LocationUsecase) Create(ctx context.Context, v access.Viewer, l *entities.Location) (*entities.Location, error) {
	if err := prepareDMCreate(v, l, &l.Visibility, &l.Audit); err != nil {
		return nil, err
	}
	l.CampaignID = v.CampaignID
	if err := uc.checkParent(ctx, v.CampaignID, 0, l.ParentID); err != nil {
		return nil, err
	}
	if err := uc.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *LocationUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.Location) (*entities.Location, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	existing, err := uc.locations.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if err := uc.checkParent(ctx, v.CampaignID, id, in.ParentID); err != nil {
		return nil, err
	}
	if err := uc.locations.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// checkParent validates parentID for location id (0 when creating).
func (uc *LocationUsecase) checkParent(ctx context.Context, campaignID, id int, parentID *int) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return apperr.Validation("a location cannot be its own parent")
	}
	if _, err := uc.locations.GetByID(ctx, campaignID, *parentID); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return apperr.Validation("parent location does not exist in this campaign")
		}
		return err
	}
	if id == 0 {
		return nil
	}
	cycle, err := uc.locations.IsAncestor(ctx, campaignID, id, *parentID)
	if err != nil {
		return err
	}
	if cycle {
		return apperr.Validation("a location cannot be moved under one of its descendants")
	}
	return nil
}

func (uc *LocationUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	n, err := uc.locations.CountChildren(ctx, v.CampaignID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Validation("location has child locations; move or delete them first")
	}
	if err := uc.locations.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityLocation, id)
}
