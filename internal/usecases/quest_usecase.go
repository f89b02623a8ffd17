package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// QuestUsecase manages quests and their sub-entities. Every write is DM-only;
// players read visible quests and the links whose own visibility allows it.
type QuestUsecase struct {
	quests   interfaces.QuestStore
	sessions interfaces.SessionStore
	lookup   interfaces.EntityLookup
	files    interfaces.FileStorage
}

func NewQuestUsecase(quests interfaces.QuestStore, sessions interfaces.SessionStore, lookup interfaces.EntityLookup, files interfaces.FileStorage) *QuestUsecase {
	return &QuestUsecase{quests: quests, sessions: sessions, lookup: lookup, files: files}
}

func (uc *QuestUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Quest, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	if f.Status != "" && !entities.QuestStatus(f.Status).Valid() {
		return nil, apperr.Validation("unknown quest status filter")
	}
	return uc.quests.List(ctx, v, f)
}

func (uc *QuestUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.Quest, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	q, err := uc.quests.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, q.Visibility) {
		return nil, hiddenFrom("quest")
	}
	if err := uc.quests.LoadDetails(ctx, v, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Create stores the quest and any objectives, milestones, links and session
// ids sent with it as one unit.
func (uc *QuestUsecase) Create(ctx context.Context, v access.Viewer, q *entities.Quest) (*entities.Quest, error) {
	if err := prepareDMCreate(v, q, &q.Visibility, &q.Audit); err != nil {
		return nil, err
	}
	q.CampaignID = v.CampaignID
	if err := uc.prepareQuest(ctx, v.CampaignID, q); err != nil {
		return nil, err
	}
	if err := uc.quests.CreateBundle(ctx, q); err != nil {
		return nil, err
	}
	return uc.reload(ctx, v, q)
}

// Update replaces the quest fields. Sub-entity lists present in the request
// replace the stored ones; absent lists are left alone.
func (uc *QuestUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.Quest) (*entities.Quest, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	existing, err := uc.quests.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if in.Status == "" {
		in.Status = existing.Status
	}
	if in.QuestType == "" {
		in.QuestType = existing.QuestType
	}
	if err := uc.prepareQuest(ctx, v.CampaignID, in); err != nil {
		return nil, err
	}
	if err := uc.quests.UpdateBundle(ctx, in); err != nil {
		return nil, err
	}
	return uc.reload(ctx, v, in)
}

func (uc *QuestUsecase) reload(ctx context.Context, v access.Viewer, q *entities.Quest) (*entities.Quest, error) {
	if err := uc.quests.LoadDetails(ctx, v, q); err != nil {
		return nil, err
	}
	return q, nil
}

// prepareQuest fills defaults and checks every reference the bundle makes.
func (uc *QuestUsecase) prepareQuest(ctx context.Context, campaignID int, q *entities.Quest) error {
	if q.Status == "" {
		q.Status = entities.QuestActive
	}
	if !q.Status.Valid() {
		return apperr.Validation("status must be one of active, completed, failed, on-hold")
	}
	if q.QuestType == "" {
		q.QuestType = entities.QuestSide
	}
	if !q.QuestType.Valid() {
		return apperr.Validation("quest_type must be one of main, side, personal")
	}
	for i := range q.Milestones {
		if err := uc.checkSession(ctx, campaignID, q.Milestones[i].SessionID); err != nil {
			return err
		}
	}
	for i := range q.Links {
		if err := uc.checkLink(ctx, campaignID, &q.Links[i]); err != nil {
			return err
		}
	}
	for i := range q.SessionIDs {
		if err := uc.checkSession(ctx, campaignID, &q.SessionIDs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (uc *QuestUsecase) checkSession(ctx context.Context, campaignID int, sessionID *int) error {
	if sessionID == nil {
		return nil
	}
	if _, err := uc.sessions.GetByID(ctx, campaignID, *sessionID); err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return apperr.Validation("session does not exist in this campaign")
		}
		return err
	}
	return nil
}

func (uc *QuestUsecase) checkLink(ctx context.Context, campaignID int, l *entities.QuestLink) error {
	if err := access.CheckVisibility(&l.Visibility, entities.VisibilityDMOnly); err != nil {
		return err
	}
	_, err := requireEntity(ctx, uc.lookup, campaignID, l.EntityType, l.EntityID)
	return err
}

func (uc *QuestUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	if err := access.RequireDM(v); err != nil {
		return err
	}
	if err := uc.quests.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntityQuest, id)
}

// quest loads the parent quest of a sub-entity operation for a DM.
func (uc *QuestUsecase) quest(ctx context.Context, v access.Viewer, questID int) (*entities.Quest, error) {
	if err := access.RequireDM(v); err != nil {
		return nil, err
	}
	return uc.quests.GetByID(ctx, v.CampaignID, questID)
}

func (uc *QuestUsecase) AddObjective(ctx context.Context, v access.Viewer, questID int, o *entities.QuestObjective) (*entities.QuestObjective, error) {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return nil, err
	}
	if err := entities.Validate(o); err != nil {
		return nil, err
	}
	o.QuestID = questID
	if err := uc.quests.AddObjective(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *QuestUsecase) UpdateObjective(ctx context.Context, v access.Viewer, questID, id int, o *entities.QuestObjective) (*entities.QuestObjective, error) {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return nil, err
	}
	if err := entities.Validate(o); err != nil {
		return nil, err
	}
	o.ID = id
	o.QuestID = questID
	if err := uc.quests.UpdateObjective(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *QuestUsecase) DeleteObjective(ctx context.Context, v access.Viewer, questID, id int) error {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return err
	}
	return uc.quests.DeleteObjective(ctx, questID, id)
}

func (uc *QuestUsecase) AddMilestone(ctx context.Context, v access.Viewer, questID int, m *entities.QuestMilestone) (*entities.QuestMilestone, error) {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return nil, err
	}
	if err := entities.Validate(m); err != nil {
		return nil, err
	}
	if err := uc.checkSession(ctx, v.CampaignID, m.SessionID); err != nil {
		return nil, err
	}
	m.QuestID = questID
	if err := uc.quests.AddMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *QuestUsecase) UpdateMilestone(ctx context.Context, v access.Viewer, questID, id int, m *entities.QuestMilestone) (*entities.QuestMilestone, error) {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return nil, err
	}
	if err := entities.Validate(m); err != nil {
		return nil, err
	}
	if err := uc.checkSession(ctx, v.CampaignID, m.SessionID); err != nil {
		return nil, err
	}
	m.ID = id
	m.QuestID = questID
	if err := uc.quests.UpdateMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *QuestUsecase) DeleteMilestone(ctx context.Context, v access.Viewer, questID, id int) error {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return err
	}
	return uc.quests.DeleteMilestone(ctx, questID, id)
}

func (uc *QuestUsecase) AddLink(ctx context.Context, v access.Viewer, questID int, l *entities.QuestLink) (*entities.QuestLink, error) {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return nil, err
	}
	if err := entities.Validate(l); err != nil {
		return nil, err
	}
	if err := uc.checkLink(ctx, v.CampaignID, l); err != nil {
		return nil, err
	}
	l.QuestID = questID
	if err := uc.quests.AddLink(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *QuestUsecase) DeleteLink(ctx context.Context, v access.Viewer, questID, id int) error {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return err
	}
	return uc.quests.DeleteLink(ctx, questID, id)
}

// SetSessions replaces the sessions the quest is associated with.
func (uc *QuestUsecase) SetSessions(ctx context.Context, v access.Viewer, questID int, sessionIDs []int) ([]int, error) {
	if _, err := uc.quest(ctx, v, questID); err != nil {
		return nil, err
	}
	for i := range sessionIDs {
		if err := uc.checkSession(ctx, v.CampaignID, &sessionIDs[i]); err != nil {
			return nil, err
		}
	}
	if sessionIDs == nil {
		sessionIDs = []int{}
	}
	if err := uc.quests.ReplaceSessions(ctx, v.CampaignID, questID, sessionIDs); err != nil {
		return nil, err
	}
	return sessionIDs, nil
}
