package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustAccount(t *testing.T, s *Store, username string, typ AccountType) *Account {
	t.Helper()
	acc := &Account{
		Name:         username,
		Username:     username,
		PasswordHash: "x",
		AccountType:  typ,
	}
	require.NoError(t, s.CreateAccount(context.Background(), acc))
	return acc
}

func mustCampaign(t *testing.T, s *Store, slug string, creatorID int64) *Campaign {
	t.Helper()
	c := &Campaign{Name: slug, Slug: slug, CreatorID: creatorID}
	require.NoError(t, s.CreateCampaign(context.Background(), c))
	return c
}

func TestAccountRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acc := mustAccount(t, s, "galdor", TypeMaster)
	require.NotZero(t, acc.ID)

	got, err := s.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "galdor", got.Username)
	assert.Equal(t, TypeMaster, got.AccountType)

	_, err = s.AccountByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsernameLookupIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAccount(t, s, "Galdor", TypePlayer)

	_, err := s.AccountByUsername(ctx, "Galdor")
	require.NoError(t, err)
	_, err = s.AccountByUsername(ctx, "galdor")
	assert.ErrorIs(t, err, ErrNotFound)

	taken, err := s.UsernameTaken(ctx, "Galdor")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.UsernameTaken(ctx, "galdor")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCreateCampaignSeedsSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	c := mustCampaign(t, s, "midnight-vale", owner.ID)

	st, err := s.SettingsByCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultThemePrimary, st.ThemePrimary)
	assert.Equal(t, DefaultThemeSecondary, st.ThemeSecondary)
	assert.True(t, st.ShowSessionClock)
}

func TestCampaignBySlugIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	mustCampaign(t, s, "midnight-vale", owner.ID)

	c, err := s.CampaignBySlug(ctx, "Midnight-Vale")
	require.NoError(t, err)
	assert.Equal(t, "midnight-vale", c.Slug)

	_, err = s.CampaignBySlug(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCampaignsScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAccount(t, s, "master-a", TypeMaster)
	b := mustAccount(t, s, "master-b", TypeMaster)
	mustCampaign(t, s, "world-a", a.ID)
	mustCampaign(t, s, "world-b", b.ID)

	all, err := s.ListCampaigns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.ListCampaigns(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "world-a", mine[0].Slug)
}

func TestDeleteCampaignCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	c := mustCampaign(t, s, "doomed", owner.ID)

	n := &News{AuthorID: owner.ID, CampaignID: c.ID, Title: "The fall"}
	require.NoError(t, s.CreateNews(ctx, n))

	require.NoError(t, s.DeleteCampaign(ctx, c.ID))

	_, err := s.NewsByID(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SettingsByCampaign(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccountRestrictedByCampaigns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	mustCampaign(t, s, "held", owner.ID)

	assert.Error(t, s.DeleteAccount(ctx, owner.ID))

	// Without campaigns the account goes.
	author := mustAccount(t, s, "author", TypePlayer)
	require.NoError(t, s.DeleteAccount(ctx, author.ID))
	_, err := s.AccountByID(ctx, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCampaignFeedPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	c := mustCampaign(t, s, "paged", owner.ID)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		cat := CategoryUpdate
		if i == 0 {
			cat = CategoryRumor
		}
		require.NoError(t, s.CreateNews(ctx, &News{
			AuthorID:    owner.ID,
			CampaignID:  c.ID,
			Title:       fmt.Sprintf("entry %d", i),
			Category:    cat,
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	first, pages, err := s.CampaignFeed(ctx, c.ID, "", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, first, 6)
	assert.Equal(t, "entry 6", first[0].Title) // newest first

	second, _, err := s.CampaignFeed(ctx, c.ID, "", 2, 6)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "entry 0", second[0].Title)

	rumors, pages, err := s.CampaignFeed(ctx, c.ID, CategoryRumor, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	require.Len(t, rumors, 1)
	assert.Equal(t, CategoryRumor, rumors[0].Category)

	// Page 0 clamps to 1 instead of erroring.
	clamped, _, err := s.CampaignFeed(ctx, c.ID, "", 0, 6)
	require.NoError(t, err)
	assert.Len(t, clamped, 6)

	none, pages, err := s.CampaignFeed(ctx, c.ID, "Ballad", 1, 6)
	require.NoError(t, err)
	assert.Zero(t, pages)
	assert.Empty(t, none)
}

func TestNewsInCampaignScopesLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	c1 := mustCampaign(t, s, "one", owner.ID)
	c2 := mustCampaign(t, s, "two", owner.ID)

	n := &News{AuthorID: owner.ID, CampaignID: c1.ID, Title: "scoped"}
	require.NoError(t, s.CreateNews(ctx, n))

	got, err := s.NewsInCampaign(ctx, n.ID, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, "scoped", got.Title)

	_, err = s.NewsInCampaign(ctx, n.ID, c2.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestSessionLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	c := mustCampaign(t, s, "logs", owner.ID)

	_, err := s.LatestSessionLog(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateNews(ctx, &News{
		AuthorID: owner.ID, CampaignID: c.ID, Title: "session one",
		Category: CategorySessionLog, PublishedAt: base,
	}))
	require.NoError(t, s.CreateNews(ctx, &News{
		AuthorID: owner.ID, CampaignID: c.ID, Title: "session two",
		Category: CategorySessionLog, PublishedAt: base.Add(time.Hour),
	}))
	require.NoError(t, s.CreateNews(ctx, &News{
		AuthorID: owner.ID, CampaignID: c.ID, Title: "not a session",
		Category: CategoryUpdate, PublishedAt: base.Add(2 * time.Hour),
	}))

	latest, err := s.LatestSessionLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session two", latest.Title)
}

func TestSettingsOrDefaultAndUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No settings row yet for an unknown campaign id.
	st, err := s.SettingsOrDefault(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, st.ID)
	assert.Equal(t, DefaultFontFamily, st.FontFamily)

	owner := mustAccount(t, s, "owner", TypeMaster)
	c := mustCampaign(t, s, "themed", owner.ID)

	st, err = s.SettingsOrDefault(ctx, c.ID)
	require.NoError(t, err)
	st.ThemePrimary = "#112233"
	st.DiscordWebhookURL = "https://discord.example/hook"
	require.NoError(t, s.SaveSettings(ctx, st))
	require.NoError(t, s.SaveSettings(ctx, st)) // upsert, not duplicate

	got, err := s.SettingsByCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "#112233", got.ThemePrimary)
	assert.Equal(t, "https://discord.example/hook", got.DiscordWebhookURL)
}

func TestSaveWebhookURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustAccount(t, s, "owner", TypeMaster)
	c := mustCampaign(t, s, "hooked", owner.ID)

	require.NoError(t, s.SaveWebhookURL(ctx, c.ID, "https://discord.example/a"))
	st, err := s.SettingsByCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.example/a", st.DiscordWebhookURL)
	assert.Equal(t, DefaultThemePrimary, st.ThemePrimary) // theme untouched

	require.NoError(t, s.SaveWebhookURL(ctx, c.ID, ""))
	st, err = s.SettingsByCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, st.DiscordWebhookURL)
}

func TestGlobalSettingsSingleton(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.Global(ctx)
	require.NoError(t, err)
	assert.False(t, g.MaintenanceActive)

	require.NoError(t, s.SetMaintenance(ctx, true, "The realm sleeps."))
	g, err = s.Global(ctx)
	require.NoError(t, err)
	assert.True(t, g.MaintenanceActive)
	assert.Equal(t, "The realm sleeps.", g.MaintenanceMessage)
}

func TestLegacySessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertLegacySession(ctx, "tok-1", "galdor", 3, time.Now().Add(time.Hour)))
	username, campaignID, err := s.LegacySession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "galdor", username)
	assert.EqualValues(t, 3, campaignID)

	// Expired rows read as missing and get pruned.
	require.NoError(t, s.InsertLegacySession(ctx, "tok-2", "galdor", 3, time.Now().Add(-time.Hour)))
	_, _, err = s.LegacySession(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.PruneLegacySessions(ctx))
	_, _, err = s.LegacySession(ctx, "tok-1")
	assert.NoError(t, err)

	require.NoError(t, s.DeleteLegacySession(ctx, "tok-1"))
	_, _, err = s.LegacySession(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedDeveloperRunsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	username, password, err := s.SeedDeveloper(ctx)
	require.NoError(t, err)
	assert.Equal(t, "developer", username)
	assert.NotEmpty(t, password)

	has, err := s.HasDeveloper(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	username, password, err = s.SeedDeveloper(ctx)
	require.NoError(t, err)
	assert.Empty(t, username)
	assert.Empty(t, password)
}
