// Package discord posts publish notifications to a campaign's configured
// webhook. Dispatch is best effort: the publish transaction has already
// committed, so every failure here ends in a logged outcome, never an
// error to the publishing caller.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"gmportal/internal/db"
	"gmportal/internal/upload"
)

// Outcome is the terminal state of one dispatch attempt.
type Outcome int

const (
	// Delivered: the webhook accepted the message.
	Delivered Outcome = iota
	// Suppressed: the campaign has no webhook configured; nothing was sent.
	Suppressed
	// Failed: conversion or delivery broke; logged and swallowed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Suppressed:
		return "suppressed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const (
	// maxDescription caps the embed description; truncated content gets an
	// ellipsis on top, so delivered descriptions reach 503 characters.
	maxDescription = 500
	ellipsis       = "..."

	// goldFallback is the embed accent when a campaign has no usable theme
	// color.
	goldFallback = 16766720
)

// tagRemnants matches block-level markup the markdown conversion leaves
// behind.
var tagRemnants = regexp.MustCompile(`(?i)</?(div|article|span|cite)[^>]*>`)

var whitespace = regexp.MustCompile(`\s+`)

// SettingsSource is the slice of the store the dispatcher reads.
type SettingsSource interface {
	SettingsByCampaign(ctx context.Context, campaignID int64) (*db.Settings, error)
}

type Dispatcher struct {
	settings SettingsSource
	client   *http.Client
	logger   *slog.Logger

	// BaseURL prefixes deep links and image URLs in the embed.
	BaseURL string
	// BotName is the username the webhook posts under.
	BotName string
}

func NewDispatcher(settings SettingsSource, baseURL, botName string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		settings: settings,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		BotName:  botName,
	}
}

type message struct {
	Username string  `json:"username"`
	Content  string  `json:"content"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Color       int        `json:"color"`
	URL         string     `json:"url"`
	Image       embedImage `json:"image"`
	Footer      footer     `json:"footer"`
}

type embedImage struct {
	URL string `json:"url"`
}

type footer struct {
	Text string `json:"text"`
}

// Dispatch sends the publish notification for one news item. It never
// returns an error; the outcome says what happened and failures are
// logged.
func (d *Dispatcher) Dispatch(ctx context.Context, news *db.News, campaign *db.Campaign) Outcome {
	settings, err := d.settings.SettingsByCampaign(ctx, news.CampaignID)
	if errors.Is(err, db.ErrNotFound) {
		return Suppressed
	}
	if err != nil {
		d.logger.Error("webhook dispatch failed", "news", news.ID, "err", err)
		return Failed
	}
	if settings.DiscordWebhookURL == "" {
		return Suppressed
	}

	msg := d.buildMessage(news, campaign, settings)
	if err := d.post(ctx, settings.DiscordWebhookURL, msg); err != nil {
		d.logger.Error("webhook dispatch failed", "news", news.ID, "campaign", campaign.Slug, "err", err)
		return Failed
	}
	d.logger.Info("webhook delivered", "news", news.ID, "campaign", campaign.Slug)
	return Delivered
}

// Test sends a canned message to the campaign's webhook, synchronously.
// Unlike Dispatch it reports failure: its whole point is webhook
// validation.
func (d *Dispatcher) Test(ctx context.Context, campaign *db.Campaign) (bool, string) {
	settings, err := d.settings.SettingsByCampaign(ctx, campaign.ID)
	if err != nil || settings.DiscordWebhookURL == "" {
		return false, "No webhook configured for this campaign."
	}

	test := &db.News{
		Title:    "🛠️ Connection Test Successful!",
		Content:  "<p>The <b>GM Portal</b> has established a link with this channel. The messenger raven is ready for the next chronicles!</p>",
		Category: "System",
		ImageURL: upload.DefaultNewsImage,
	}
	test.PublishedAt = time.Now()
	test.CampaignID = campaign.ID

	msg := d.buildMessage(test, campaign, settings)
	if err := d.post(ctx, settings.DiscordWebhookURL, msg); err != nil {
		return false, fmt.Sprintf("Delivery failed: %v. Check the webhook URL.", err)
	}
	return true, "Raven sent! Check the Discord channel."
}

func (d *Dispatcher) buildMessage(news *db.News, campaign *db.Campaign, settings *db.Settings) message {
	imageURL := news.ImageURL
	if imageURL == "" {
		imageURL = upload.DefaultNewsImage
	}

	return message{
		Username: d.BotName,
		Content:  "📜 **A new chronicle has been published!**",
		Embeds: []embed{{
			Title:       news.Title,
			Description: cleanContent(news.Content),
			Color:       parseHexColor(settings.ThemePrimary),
			URL:         fmt.Sprintf("%s/c/%s/news/%d", d.BaseURL, campaign.Slug, news.ID),
			Image:       embedImage{URL: d.BaseURL + imageURL},
			Footer: footer{Text: fmt.Sprintf("🏷️ %s • Published by %s • %s",
				news.Category, news.AuthorName, news.PublishedAt.Format("02/01/2006 15:04"))},
		}},
	}
}

func (d *Dispatcher) post(ctx context.Context, url string, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// cleanContent turns the news rich text into a single-line markdown
// snippet capped at maxDescription characters.
func cleanContent(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		md = html
	}
	md = tagRemnants.ReplaceAllString(md, " ")
	md = strings.TrimSpace(whitespace.ReplaceAllString(md, " "))

	runes := []rune(md)
	if len(runes) > maxDescription {
		return string(runes[:maxDescription]) + ellipsis
	}
	return md
}

// parseHexColor converts a #rrggbb theme color to the integer Discord
// expects, falling back to gold.
func parseHexColor(hex string) int {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return goldFallback
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return goldFallback
	}
	return int(v)
}
