package usecases

import (
	"context"
	"strings"

	"loremaster/internal/access"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// TagUsecase manages campaign tags and which entities carry them. Reading
// follows the tagged entity's visibility; writing is DM-only.
type TagUsecase struct {
	tags   interfaces.TagStore
	lookup interfaces.EntityLookup
}

func NewTagUsecase(tags interfaces.TagStore, lookup interfaces.EntityLookup) *TagUsecase {
	return &TagUsecase{tags: tags, lookup: lookup}
}

func (uc *TagUsecase) List(ctx context.Context, v access.Viewer) ([]entities.Tag, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.tags.List(ctx, v.CampaignID)
}

func (uc *TagUsecase) Create(ctx context.Context, v access.Viewer, t *entities.Tag) (*entities.Tag, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(t.Name)
	if err := entities.Validate(t); err != nil {
		return nil, err
	}
	t.CampaignID = v.CampaignID
	if err := uc.tags.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *TagUsecase) Update(ctx context.Context, v access.Viewer, id int, t *entities.Tag) (*entities.Tag, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(t.Name)
	if err := entities.Validate(t); err != nil {
		return nil, err
	}
	t.ID = id
	t.CampaignID = v.CampaignID
	if err := uc.tags.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *TagUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	return uc.tags.Delete(ctx, v.CampaignID, id)
}

// ForEntity lists the tags on an entity the viewer can see.
func (uc *TagUsecase) ForEntity(ctx context.Context, v access.Viewer, t entities.EntityType, id int) ([]entities.Tag, error) {
	if err := requireVisibleEntity(ctx, uc.lookup, v, t, id); err != nil {
		return nil, err
	}
	return uc.tags.ListForEntity(ctx, v.CampaignID, t, id)
}

// SetForEntity replaces an entity's tag set all at once.
func (uc *TagUsecase) SetForEntity(ctx context.Context, v access.Viewer, t entities.EntityType, id int, tagIDs []int) ([]entities.Tag, error) {
	if err := requireManagedEntity(ctx, uc.lookup, v, t, id); err != nil {
		return nil, err
	}
	if err := uc.tags.ReplaceForEntity(ctx, v.CampaignID, t, id, tagIDs); err != nil {
		return nil, err
	}
	return uc.tags.ListForEntity(ctx, v.CampaignID, t, id)
}
