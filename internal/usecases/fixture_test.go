package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/infrastructure"
	"loremaster/internal/testutil/memstore"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

// fixture is one campaign owned by dm with player invited and outsider not.
type fixture struct {
	store *memstore.Store
	files *infrastructure.LocalFileStore

	dm, player, outsider *entities.User
	campaign             *entities.Campaign

	dmV, playerV, outsiderV access.Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	files, err := infrastructure.NewLocalFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	f := &fixture{store: memstore.New(), files: files}

	f.dm = f.addUser(t, "gm")
	f.player = f.addUser(t, "rogue")
	f.outsider = f.addUser(t, "stranger")

	f.campaign = &entities.Campaign{Name: "Curse of the Crimson Tide", OwnerID: f.dm.ID}
	require.NoError(t, f.store.Campaigns().Create(ctx, f.campaign))
	require.NoError(t, f.store.Campaigns().AddParticipant(ctx, &entities.Participant{
		CampaignID: f.campaign.ID,
		UserID:     f.player.ID,
		Role:       entities.RolePlayer,
	}))

	f.dmV = access.Viewer{CampaignID: f.campaign.ID, UserID: f.dm.ID, Role: entities.RoleDM}
	f.playerV = access.Viewer{CampaignID: f.campaign.ID, UserID: f.player.ID, Role: entities.RolePlayer}
	f.outsiderV = access.Viewer{CampaignID: f.campaign.ID, UserID: f.outsider.ID}
	return f
}

func (f *fixture) addUser(t *testing.T, name string) *entities.User {
	t.Helper()
	u := &entities.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func requireCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperr.CodeOf(err), "error: %v", err)
}

func intPtr(v int) *int { return &v }
