package db

import (
	"context"
	"database/sql"
	"errors"
)

const settingsCols = `id, campaign_id, discord_webhook_url, vtt_url, theme_primary, theme_secondary,
	font_family, banner_url, thumbnail_url, call_to_action, show_session_clock`

func scanSettings(row *sql.Row) (*Settings, error) {
	var st Settings
	err := row.Scan(&st.ID, &st.CampaignID, &st.DiscordWebhookURL, &st.VTTURL,
		&st.ThemePrimary, &st.ThemeSecondary, &st.FontFamily,
		&st.BannerURL, &st.ThumbnailURL, &st.CallToAction, &st.ShowSessionClock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) SettingsByCampaign(ctx context.Context, campaignID int64) (*Settings, error) {
	return scanSettings(s.db.QueryRowContext(ctx,
		`SELECT `+settingsCols+` FROM settings WHERE campaign_id = ?`, campaignID))
}

// SettingsOrDefault never fails with ErrNotFound: campaigns created before
// settings existed get an unsaved default instance.
func (s *Store) SettingsOrDefault(ctx context.Context, campaignID int64) (*Settings, error) {
	st, err := s.SettingsByCampaign(ctx, campaignID)
	if errors.Is(err, ErrNotFound) {
		return &Settings{
			CampaignID:       campaignID,
			ThemePrimary:     DefaultThemePrimary,
			ThemeSecondary:   DefaultThemeSecondary,
			FontFamily:       DefaultFontFamily,
			CallToAction:     DefaultCallToAction,
			ShowSessionClock: true,
		}, nil
	}
	return st, err
}

// SaveSettings inserts or updates the campaign's settings row; the unique
// index on campaign_id keeps the relation 1:1.
func (s *Store) SaveSettings(ctx context.Context, st *Settings) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (campaign_id, discord_webhook_url, vtt_url, theme_primary, theme_secondary,
			font_family, banner_url, thumbnail_url, call_to_action, show_session_clock)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(campaign_id) DO UPDATE SET
			discord_webhook_url = excluded.discord_webhook_url,
			vtt_url = excluded.vtt_url,
			theme_primary = excluded.theme_primary,
			theme_secondary = excluded.theme_secondary,
			font_family = excluded.font_family,
			banner_url = excluded.banner_url,
			thumbnail_url = excluded.thumbnail_url,
			call_to_action = excluded.call_to_action,
			show_session_clock = excluded.show_session_clock`,
		st.CampaignID, st.DiscordWebhookURL, st.VTTURL, st.ThemePrimary, st.ThemeSecondary,
		st.FontFamily, st.BannerURL, st.ThumbnailURL, st.CallToAction, st.ShowSessionClock)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && st.ID == 0 {
		st.ID = id
	}
	return nil
}

// SaveWebhookURL updates just the Discord webhook, creating the settings
// row when the campaign was never configured.
func (s *Store) SaveWebhookURL(ctx context.Context, campaignID int64, url string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (campaign_id, discord_webhook_url, theme_primary, theme_secondary, font_family, call_to_action)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(campaign_id) DO UPDATE SET discord_webhook_url = excluded.discord_webhook_url`,
		campaignID, url, DefaultThemePrimary, DefaultThemeSecondary, DefaultFontFamily, DefaultCallToAction)
	return err
}
