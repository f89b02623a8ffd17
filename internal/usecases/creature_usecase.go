package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

type CreatureUsecase struct {
	creatures interfaces.CreatureStore
	files     interfaces.FileStorage
}

func NewCreatureUsecase(creatures interfaces.CreatureStore, files interfaces.FileStorage) *CreatureUsecase {
	return &CreatureUsecase{creatures: creatures, files: files}
}

func (uc *CreatureUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Creature, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.creatures.List(ctx, v, f)
}

func (uc *CreatureUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.Creature, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	c, err := uc.creatures.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, c.Visibility) {
		return nil, hiddenFrom("creature")
	}
	return c, nil
}

func (uc *CreatureUsecase) Create(ctx context.Context, v access.Viewer, c *entities.Creature) (*entities.Creature, error) {
	if err := prepareDMCreate(v, c, &c.Visibility, &c.Audit); err != nil {
		return nil, err
	}
	c.CampaignID = v.CampaignID
	if err := uc.creatures.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CreatureUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.Creature) (*entities.Creature, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	existing, err := uc.creatures.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if err := uc.creatures.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *CreatureUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if err := uc.creatures.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityCreature, id)
}
