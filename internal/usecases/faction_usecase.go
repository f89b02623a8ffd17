package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

type FactionUsecase struct {
	factions  interfaces.FactionStore
	locations interfaces.LocationStore
	files     interfaces.FileStorage
}

func NewFactionUsecase(factions interfaces.FactionStore, locations interfaces.LocationStore, files interfaces.FileStorage) *FactionUsecase {
	return &FactionUsecase{factions: factions, locations: locations, files: files}
}

func (uc *FactionUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Faction, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.factions.List(ctx, v, f)
}

func (uc *FactionUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.Faction, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	f, err := uc.factions.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, f.Visibility) {
		return nil, hiddenFrom("faction")
	}
	return f, nil
}

func (uc *FactionUsecase) Create(ctx context.Context, v access.Viewer, f *entities.Faction) (*entities.Faction, error) {
	if err := prepareDMCreate(v, f, &f.Visibility, &f.Audit); err != nil {
		return nil, err
	}
	f.CampaignID = v.CampaignID
	if err := uc.checkHeadquarters(ctx, v.CampaignID, f.HeadquartersLocationID); err != nil {
		return nil, err
	}
	if err := uc.factions.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (uc *FactionUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.Faction) (*entities.Faction, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	existing, err := uc.factions.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if err := uc.checkHeadquarters(ctx, v.CampaignID, in.HeadquartersLocationID); err != nil {
		return nil, err
	}
	if err := uc.factions.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *FactionUsecase) checkHeadquarters(ctx context.Context, campaignID int, locationID *int) error {
	if locationID == nil {
		return nil
	}
	if _, err := uc.locations.GetByID(ctx, campaignID, *locationID); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return apperr.Validation("headquarters location does not exist in this campaign")
		}
		return err
	}
	return nil
}

func (uc *FactionUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if err := uc.factions.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityFaction, id)
}
