package usecases

import (
	"context"
	"errors"
	"strings"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

type InviteInput struct {
	Username string        `json:"username" validate:"required"`
	Role     entities.Role `json:"role"`
}

// CampaignUsecase manages campaigns and their participant lists.
type CampaignUsecase struct {
	campaigns interfaces.CampaignStore
	users     interfaces.UserStore
	files     interfaces.FileStorage
}

func NewCampaignUsecase(campaigns interfaces.CampaignStore, users interfaces.UserStore, files interfaces.FileStorage) *CampaignUsecase {
	return &CampaignUsecase{campaigns: campaigns, users: users, files: files}
}

// Create makes the caller the owner, and so a DM, of a new campaign.
func (uc *CampaignUsecase) Create(ctx context.Context, id access.Identity, c *entities.Campaign) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := entities.Validate(c); err != nil {
		return err
	}
	c.OwnerID = id.UserID
	return uc.campaigns.Create(ctx, c)
}

func (uc *CampaignUsecase) List(ctx context.Context, id access.Identity) ([]entities.CampaignMembership, error) {
	return uc.campaigns.ListForUser(ctx, id.UserID)
}

func (uc *CampaignUsecase) Get(ctx context.Context, v access.Viewer) (*entities.CampaignMembership, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	c, err := uc.campaigns.GetByID(ctx, v.CampaignID)
	if err != nil {
		return nil, err
	}
	return &entities.CampaignMembership{Campaign: *c, Role: v.Role, IsOwner: c.OwnerID == v.UserID}, nil
}

// Update changes name and description. Any DM may do it.
func (uc *CampaignUsecase) Update(ctx context.Context, v access.Viewer, in *entities.Campaign) (*entities.Campaign, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := entities.Validate(in); err != nil {
		return nil, err
	}
	in.ID = v.CampaignID
	if err := uc.campaigns.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// Delete is reserved to the owner. Rows cascade in the database; uploaded
// files are removed afterwards.
func (uc *CampaignUsecase) Delete(ctx context.Context, v access.Viewer) error {
	owner, err := uc.campaigns.GetCampaignOwner(ctx, v.CampaignID)
	if err != nil {
		return err
	}
	if owner != v.UserID {
		return apperr.Forbidden("only the campaign owner can delete it")
	}
	if err := uc.campaigns.Delete(ctx, v.CampaignID); err != nil {
		return err
	}
	return uc.files.RemoveCampaign(v.CampaignID)
}

func (uc *CampaignUsecase) ListParticipants(ctx context.Context, v access.Viewer) ([]entities.Participant, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.campaigns.ListParticipants(ctx, v.CampaignID)
}

// Invite adds a registered user by username. Role defaults to player.
func (uc *CampaignUsecase) Invite(ctx context.Context, v access.Viewer, in InviteInput) (*entities.Participant, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	if err := entities.Validate(in); err != nil {
		return nil, err
	}
	if in.Role == entities.RoleNone {
		in.Role = entities.RolePlayer
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("role must be dm or player")
	}

	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("no user with that username")
		}
		return nil, err
	}

	inviter := v.UserID
	p := &entities.Participant{
		CampaignID: v.CampaignID,
		UserID:     user.ID,
		Username:   user.Username,
		Role:       in.Role,
		InvitedBy:  &inviter,
	}
	if err := uc.campaigns.AddParticipant(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateParticipantRole changes a participant's role. The owner's row is fixed.
func (uc *CampaignUsecase) UpdateParticipantRole(ctx context.Context, v access.Viewer, userID int, role entities.Role) (*entities.Participant, error) {
	if err := uc.checkParticipantTarget(ctx, v, userID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.Validation("role must be dm or player")
	}
	if err := uc.campaigns.UpdateParticipantRole(ctx, v.CampaignID, userID, role); err != nil {
		return nil, err
	}
	return uc.campaigns.GetParticipant(ctx, v.CampaignID, userID)
}

func (uc *CampaignUsecase) RemoveParticipant(ctx context.Context, v access.Viewer, userID int) error {
	if err := uc.checkParticipantTarget(ctx, v, userID); err != nil {
		return err
	}
	return uc.campaigns.RemoveParticipant(ctx, v.CampaignID, userID)
}

func (uc *CampaignUsecase) checkParticipantTarget(ctx context.Context, v access.Viewer, userID int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	owner, err := uc.campaigns.GetCampaignOwner(ctx, v.CampaignID)
	if err != nil {
		return err
	}
	if owner == userID {
		return apperr.Validation("the campaign owner's participation cannot be changed")
	}
	return nil
}
