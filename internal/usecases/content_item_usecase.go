package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

type ContentItemUsecase struct {
	items interfaces.ContentItemStore
	files interfaces.FileStorage
}

func NewContentItemUsecase(items interfaces.ContentItemStore, files interfaces.FileStorage) *ContentItemUsecase {
	return &ContentItemUsecase{items: items, files: files}
}

func (uc *ContentItemUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.ContentItem, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.items.List(ctx, v, f)
}

func (uc *ContentItemUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.ContentItem, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	i, err := uc.items.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, i.Visibility) {
		return nil, hiddenFrom("content item")
	}
	return i, nil
}

func (uc *ContentItemUsecase) Create(ctx context.Context, v access.Viewer, i *entities.ContentItem) (*entities.ContentItem, error) {
	if err := prepareDMCreate(v, i, &i.Visibility, &i.Audit); err != nil {
		return nil, err
	}
	i.CampaignID = v.CampaignID
	if err := uc.items.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (uc *ContentItemUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.ContentItem) (*entities.ContentItem, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	existing, err := uc.items.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if err := uc.items.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *ContentItemUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if err := uc.items.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityContentItem, id)
}
