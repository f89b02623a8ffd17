package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

type WorldInfoUsecase struct {
	entries interfaces.WorldInfoStore
	files   interfaces.FileStorage
}

func NewWorldInfoUsecase(entries interfaces.WorldInfoStore, files interfaces.FileStorage) *WorldInfoUsecase {
	return &WorldInfoUsecase{entries: entries, files: files}
}

func (uc *WorldInfoUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.WorldInfo, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.entries.List(ctx, v, f)
}

func (uc *WorldInfoUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.WorldInfo, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	w, err := uc.entries.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, w.Visibility) {
		return nil, hiddenFrom("world info")
	}
	return w, nil
}

func (uc *WorldInfoUsecase) Create(ctx context.Context, v access.Viewer, w *entities.WorldInfo) (*entities.WorldInfo, error) {
	if err := prepareDMCreate(v, w, &w.Visibility, &w.Audit); err != nil {
		return nil, err
	}
	w.CampaignID = v.CampaignID
	if err := uc.entries.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (uc *WorldInfoUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.WorldInfo) (*entities.WorldInfo, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	existing, err := uc.entries.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if err := uc.entries.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *WorldInfoUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if err := uc.entries.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityWorldInfo, id)
}
