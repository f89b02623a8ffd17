package usecases

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// SessionUsecase lets both roles record sessions. Players manage only the
// sessions and notes they wrote.
type SessionUsecase struct {
	sessions interfaces.SessionStore
	files    interfaces.FileStorage
}

func NewSessionUsecase(sessions interfaces.SessionStore, files interfaces.FileStorage) *SessionUsecase {
	return &SessionUsecase{sessions: sessions, files: files}
}

func (uc *SessionUsecase) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Session, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	return uc.sessions.List(ctx, v, f)
}

func (uc *SessionUsecase) Get(ctx context.Context, v access.Viewer, id int) (*entities.Session, error) {
	if err := access.RequireMember(v); err != nil {
		return nil, err
	}
	s, err := uc.sessions.GetByID(ctx, v.CampaignID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(v, s.Visibility) {
		return nil, hiddenFrom("session")
	}
	return s, nil
}

// editable loads a session for a write; DMs also reach hidden sessions.
func (uc *SessionUsecase) editable(ctx context.Context, v access.Viewer, id int) (*entities.Session, error) {
	if v.IsDM() {
		return uc.sessions.GetByID(ctx, v.CampaignID, id)
	}
	return uc.Get(ctx, v, id)
}

func (uc *SessionUsecase) Create(ctx context.Context, v access.Viewer, s *entities.Session) (*entities.Session, error) {
	if err := access.PrepareSessionCreate(v, s); err != nil {
		return nil, err
	}
	if err := entities.Validate(s); err != nil {
		return nil, err
	}
	if err := uc.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *SessionUsecase) Update(ctx context.Context, v access.Viewer, id int, in *entities.Session) (*entities.Session, error) {
	existing, err := uc.editable(ctx, v, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeSessionWrite(v, existing); err != nil {
		return nil, err
	}
	if err := prepareUpdate(v, in, &in.Visibility, &in.Audit, existing.Visibility, existing.Audit); err != nil {
		return nil, err
	}
	in.ID = id
	in.CampaignID = v.CampaignID
	if err := uc.sessions.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (uc *SessionUsecase) Delete(ctx context.Context, v access.Viewer, id int) error {
	existing, err := uc.editable(ctx, v, id)
	if err != nil {
		return err
	}
	if err := access.AuthorizeSessionWrite(v, existing); err != nil {
		return err
	}
	if err := uc.sessions.Delete(ctx, v.CampaignID, id); err != nil {
		return err
	}
	return removeFiles(uc.files, v.CampaignID, entities.EntitySession, id)
}

func (uc *SessionUsecase) ListNotes(ctx context.Context, v access.Viewer, sessionID int) ([]entities.SessionNote, error) {
	if _, err := uc.Get(ctx, v, sessionID); err != nil {
		return nil, err
	}
	return uc.sessions.ListNotes(ctx, v, sessionID)
}

func (uc *SessionUsecase) CreateNote(ctx context.Context, v access.Viewer, sessionID int, n *entities.SessionNote) (*entities.SessionNote, error) {
	if _, err := uc.Get(ctx, v, sessionID); err != nil {
		return nil, err
	}
	if err := access.PrepareNoteCreate(v, n); err != nil {
		return nil, err
	}
	if err := entities.Validate(n); err != nil {
		return nil, err
	}
	n.SessionID = sessionID
	if err := uc.sessions.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (uc *SessionUsecase) UpdateNote(ctx context.Context, v access.Viewer, sessionID, id int, in *entities.SessionNote) (*entities.SessionNote, error) {
	existing, err := uc.note(ctx, v, sessionID, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeNoteWrite(v, existing); err != nil {
		return nil, err
	}
	if err := entities.Validate(in); err != nil {
		return nil, err
	}
	out := *existing
	out.Content = in.Content
	if in.Visibility != "" {
		if !in.Visibility.ValidForNote() {
			return nil, apperr.Validation("note visibility must be dm-only or player-visible")
		}
		out.Visibility = in.Visibility
	}
	if err := uc.sessions.UpdateNote(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *SessionUsecase) DeleteNote(ctx context.Context, v access.Viewer, sessionID, id int) error {
	existing, err := uc.note(ctx, v, sessionID, id)
	if err != nil {
		return err
	}
	if err := access.AuthorizeNoteWrite(v, existing); err != nil {
		return err
	}
	return uc.sessions.DeleteNote(ctx, sessionID, id)
}

// note loads a note of a visible session, hiding notes v may not read.
func (uc *SessionUsecase) note(ctx context.Context, v access.Viewer, sessionID, id int) (*entities.SessionNote, error) {
	if _, err := uc.Get(ctx, v, sessionID); err != nil {
		return nil, err
	}
	n, err := uc.sessions.GetNote(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSeeNote(v, n) {
		return nil, hiddenFrom("note")
	}
	return n, nil
}
