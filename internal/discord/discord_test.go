package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmportal/internal/db"
	"gmportal/internal/upload"
)

type fakeSettings struct {
	settings *db.Settings
	err      error
}

func (f *fakeSettings) SettingsByCampaign(ctx context.Context, campaignID int64) (*db.Settings, error) {
	return f.settings, f.err
}

type capture struct {
	calls    int
	lastBody message
	status   int
}

func (c *capture) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		json.NewDecoder(r.Body).Decode(&c.lastBody)
		if c.status != 0 {
			w.WriteHeader(c.status)
		}
	}
}

func newTestDispatcher(src SettingsSource) *Dispatcher {
	return NewDispatcher(src, "https://portal.example/", "Chronicle Raven", time.Second, nil)
}

func TestDispatchSuppressedWithoutWebhook(t *testing.T) {
	cap := &capture{}
	srv := httptest.NewServer(cap.handler())
	defer srv.Close()

	news := &db.News{ID: 1, CampaignID: 5, Title: "t"}
	campaign := &db.Campaign{ID: 5, Slug: "vale"}

	d := newTestDispatcher(&fakeSettings{settings: &db.Settings{CampaignID: 5}})
	assert.Equal(t, Suppressed, d.Dispatch(context.Background(), news, campaign))

	d = newTestDispatcher(&fakeSettings{err: db.ErrNotFound})
	assert.Equal(t, Suppressed, d.Dispatch(context.Background(), news, campaign))

	assert.Zero(t, cap.calls, "no HTTP traffic when suppressed")
}

func TestDispatchDeliversEmbed(t *testing.T) {
	cap := &capture{}
	srv := httptest.NewServer(cap.handler())
	defer srv.Close()

	d := newTestDispatcher(&fakeSettings{settings: &db.Settings{
		CampaignID:        5,
		DiscordWebhookURL: srv.URL,
		ThemePrimary:      "#8e0000",
	}})

	news := &db.News{
		ID:          42,
		CampaignID:  5,
		Title:       "The Siege of Midnight Vale",
		Content:     "<p>The walls <strong>held</strong>.</p>",
		AuthorName:  "Galdor",
		Category:    db.CategoryEvent,
		PublishedAt: time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC),
	}
	campaign := &db.Campaign{ID: 5, Slug: "midnight-vale"}

	outcome := d.Dispatch(context.Background(), news, campaign)
	require.Equal(t, Delivered, outcome)
	require.Equal(t, 1, cap.calls)

	msg := cap.lastBody
	assert.Equal(t, "Chronicle Raven", msg.Username)
	assert.Contains(t, msg.Content, "A new chronicle has been published")
	require.Len(t, msg.Embeds, 1)

	e := msg.Embeds[0]
	assert.Equal(t, "The Siege of Midnight Vale", e.Title)
	assert.Contains(t, e.Description, "**held**", "rich text becomes markdown")
	assert.Equal(t, 0x8e0000, e.Color)
	assert.Equal(t, "https://portal.example/c/midnight-vale/news/42", e.URL)
	assert.Equal(t, "https://portal.example"+upload.DefaultNewsImage, e.Image.URL)
	assert.Contains(t, e.Footer.Text, "Event")
	assert.Contains(t, e.Footer.Text, "Galdor")
	assert.Contains(t, e.Footer.Text, "14/03/2026 21:30")
}

func TestDispatchTruncatesLongContent(t *testing.T) {
	cap := &capture{}
	srv := httptest.NewServer(cap.handler())
	defer srv.Close()

	d := newTestDispatcher(&fakeSettings{settings: &db.Settings{
		CampaignID: 5, DiscordWebhookURL: srv.URL,
	}})

	news := &db.News{
		ID: 1, CampaignID: 5, Title: "long",
		Content: strings.Repeat("a", 800), PublishedAt: time.Now(),
	}
	require.Equal(t, Delivered, d.Dispatch(context.Background(), news, &db.Campaign{ID: 5, Slug: "s"}))

	desc := cap.lastBody.Embeds[0].Description
	assert.Len(t, desc, maxDescription+len(ellipsis))
	assert.True(t, strings.HasSuffix(desc, ellipsis))
}

func TestDispatchFailedOnServerError(t *testing.T) {
	cap := &capture{status: http.StatusBadRequest}
	srv := httptest.NewServer(cap.handler())
	defer srv.Close()

	d := newTestDispatcher(&fakeSettings{settings: &db.Settings{
		CampaignID: 5, DiscordWebhookURL: srv.URL,
	}})
	news := &db.News{ID: 1, CampaignID: 5, Title: "t", PublishedAt: time.Now()}
	assert.Equal(t, Failed, d.Dispatch(context.Background(), news, &db.Campaign{ID: 5, Slug: "s"}))
}

func TestTestReportsFailure(t *testing.T) {
	campaign := &db.Campaign{ID: 5, Slug: "s"}

	d := newTestDispatcher(&fakeSettings{settings: &db.Settings{CampaignID: 5}})
	ok, msg := d.Test(context.Background(), campaign)
	assert.False(t, ok)
	assert.Contains(t, msg, "No webhook configured")

	cap := &capture{status: http.StatusNotFound}
	srv := httptest.NewServer(cap.handler())
	defer srv.Close()

	d = newTestDispatcher(&fakeSettings{settings: &db.Settings{
		CampaignID: 5, DiscordWebhookURL: srv.URL,
	}})
	ok, msg = d.Test(context.Background(), campaign)
	assert.False(t, ok)
	assert.Contains(t, msg, "Delivery failed")

	cap.status = 0
	ok, _ = d.Test(context.Background(), campaign)
	assert.True(t, ok)
	assert.Contains(t, cap.lastBody.Embeds[0].Title, "Connection Test Successful")
}

func TestCleanContentStripsTagRemnants(t *testing.T) {
	got := cleanContent(`<div class="x">First</div>
		<article>Second   line</article> <span>third</span>`)
	assert.Equal(t, "First Second line third", got)
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, 0x8e0000, parseHexColor("#8e0000"))
	assert.Equal(t, 0x8e0000, parseHexColor("  #8e0000  "))
	assert.Equal(t, 0xffffff, parseHexColor("ffffff"))
	assert.Equal(t, goldFallback, parseHexColor(""))
	assert.Equal(t, goldFallback, parseHexColor("#fff"))
	assert.Equal(t, goldFallback, parseHexColor("#zzzzzz"))
}
