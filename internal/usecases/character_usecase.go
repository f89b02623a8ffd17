package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// CharacterUsecase applies the character rules: role-dependent create
// defaults, own-sheet visibility, and stat blocks hidden from players for
// NPCs and antagonists.
type CharacterUsecase struct {
	characters interfaces.CharacterStore
	campaigns  access.MembershipLookup
	files      interfaces.FileStorage
}

func NewCharacterUsecase(characters interfaces.CharacterStore, campaigns access.MembershipLookup, files interfaces.FileStorage) *CharacterUsecase {
	return &CharacterUsecase{characters: characters, campaigns: campaigns, files: files}
}

func (uc *CharacterUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Character, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	out, err := uc.characters.List(ctx, v, f)
	if err != nil {
		return nil, err
	}
	access.SanitizeCharacters(v, out)
	return out, nil
}

func (uc *CharacterUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.Character, error) {
	c, err := uc.visible(ctx, v, id)
	if err != nil {
		return nil, err
	}
	access.SanitizeCharacter(v, c)
	return c, nil
}

// visible loads a character and hides it from viewers who may not see it.
func (uc *CharacterUsecase) visible(ctx context.Context, v access.Viewer, id int) (*entities.Character, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	c, err := uc.characters.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSeeCharacter(v, c) {
		return nil, hiddenFrom("character")
	}
	return c, nil
}

// editable loads a character for a write. DMs reach every row, hidden ones
// included; players only rows they can see.
func (uc *CharacterUsecase) editable(ctx context.Context, v access.Viewer, id int) (*entities.Character, error) {
	if v.IsDM() {
		return uc.characters.GetByID(ctx, v.CampaignID, id)
	}
	return uc.visible(ctx, v, id)
}

func (uc *CharacterUsecase) Create(ctx context.Context, v access.Viewer, c *entities.Character) (*entities.Character, error) {
	if err := access.PrepareCharacterCreate(v, c); err != nil {
		return nil, err
	}
	if err := entities.Validate(c); err != nil {
		return nil, err
	}
	if c.PlayerUserID != nil {
		if err := requireParticipant(ctx, uc.campaigns, v.CampaignID, *c.PlayerUserID); err != nil {
			return nil, err
		}
	}
	if err := uc.characters.Create(ctx, c); err != nil {
		return nil, err
	}
	access.SanitizeCharacter(v, c)
	return c, nil
}

func (uc *CharacterUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.Character) (*entities.Character, error) {
	existing, err := uc.editable(ctx, v, id)
	if err != nil {
		return nil, err
	}
	out, err := access.ApplyCharacterUpdate(v, existing, in)
	if err != nil {
		return nil, err
	}
	if err := entities.Validate(out); err != nil {
		return nil, err
	}
	if out.PlayerUserID != nil && !sameUser(out.PlayerUserID, existing.PlayerUserID) {
		if err := requireParticipant(ctx, uc.campaigns, v.CampaignID, *out.PlayerUserID); err != nil {
			return nil, err
		}
	}
	if err := uc.characters.Update(ctx, out); err != nil {
		return nil, err
	}
	access.SanitizeCharacter(v, out)
	return out, nil
}

func (uc *CharacterUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	existing, err := uc.editable(ctx, v, id)
	if err != nil {
		return err
	}
	if err := access.AuthorizeCharacterDelete(v, existing); err != nil {
		return err
	}
	if err := uc.characters.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityCharacter, id)
}

func sameUser(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
