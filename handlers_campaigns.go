package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gmportal/internal/db"
	"gmportal/internal/policy"
	"gmportal/internal/upload"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func makeSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// reservedSlugs are path segments the router owns; a campaign can never
// claim them.
var reservedSlugs = map[string]bool{
	"admin": true, "login": true, "logout": true, "register": true,
	"profile": true, "static": true, "img": true, "api": true,
	"c": true, "home": true,
}

// campaignForCaller loads a campaign and enforces the ownership policy on
// it. Nonexistent ids 404, existing but foreign ids 403.
func campaignForCaller(w http.ResponseWriter, r *http.Request) *db.Campaign {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	c, err := store.CampaignByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		logger.Error("load campaign", "id", id, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return nil
	}
	if err := policy.Authorize(currentUser(r), c.CreatorID); err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil
	}
	return c
}

func handleCampaignList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	campaigns, err := store.ListCampaigns(r.Context(), policy.ListScope(u))
	if err != nil {
		logger.Error("list campaigns", "err", err)
	}
	renderTemplate(w, "admin_campaigns.html", map[string]any{
		"User":      u,
		"Campaigns": campaigns,
	})
}

func handleCampaignCreateForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "admin_campaign_form.html", map[string]any{"User": currentUser(r)})
}

func handleCampaignCreate(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	name := strings.TrimSpace(r.FormValue("name"))
	slug := r.FormValue("slug")
	if slug == "" {
		slug = name
	}
	slug = makeSlug(slug)

	fail := func(msg string) {
		renderTemplate(w, "admin_campaign_form.html", map[string]any{"User": u, "Error": msg})
	}
	if name == "" || slug == "" {
		fail("Name is required.")
		return
	}
	if reservedSlugs[slug] {
		fail("That address is reserved, pick another one.")
		return
	}
	if taken, err := store.SlugTaken(r.Context(), slug); err != nil || taken {
		fail("That address is already in use.")
		return
	}

	c := &db.Campaign{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(r.FormValue("description")),
		CreatorID:   u.ID,
	}
	if err := store.CreateCampaign(r.Context(), c); err != nil {
		logger.Error("create campaign", "err", err)
		fail("Save failed.")
		return
	}
	http.Redirect(w, r, "/admin/campaigns/"+strconv.FormatInt(c.ID, 10)+"/edit", http.StatusSeeOther)
}

func handleCampaignEditForm(w http.ResponseWriter, r *http.Request) {
	c := campaignForCaller(w, r)
	if c == nil {
		return
	}
	settings, err := store.SettingsOrDefault(r.Context(), c.ID)
	if err != nil {
		logger.Error("load settings", "campaign", c.ID, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	renderTemplate(w, "admin_campaign_form.html", map[string]any{
		"User":     currentUser(r),
		"Campaign": c,
		"Settings": settings,
	})
}

func handleCampaignEdit(w http.ResponseWriter, r *http.Request) {
	c := campaignForCaller(w, r)
	if c == nil {
		return
	}
	u := currentUser(r)
	r.ParseMultipartForm(16 << 20)

	settings, err := store.SettingsOrDefault(r.Context(), c.ID)
	if err != nil {
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}

	fail := func(msg string) {
		renderTemplate(w, "admin_campaign_form.html", map[string]any{
			"User": u, "Campaign": c, "Settings": settings, "Error": msg,
		})
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		fail("Name is required.")
		return
	}
	slug := makeSlug(r.FormValue("slug"))
	if slug == "" {
		slug = makeSlug(name)
	}
	if reservedSlugs[slug] {
		fail("That address is reserved, pick another one.")
		return
	}
	if slug != c.Slug {
		if taken, err := store.SlugTaken(r.Context(), slug); err != nil || taken {
			fail("That address is already in use.")
			return
		}
	}

	c.Name = name
	c.Slug = slug
	c.Description = strings.TrimSpace(r.FormValue("description"))

	settings.ThemePrimary = formValueOr(r, "theme_primary", db.DefaultThemePrimary)
	settings.ThemeSecondary = formValueOr(r, "theme_secondary", db.DefaultThemeSecondary)
	settings.FontFamily = formValueOr(r, "font_family", db.DefaultFontFamily)
	settings.CallToAction = formValueOr(r, "call_to_action", db.DefaultCallToAction)
	settings.VTTURL = r.FormValue("vtt_url")
	settings.DiscordWebhookURL = r.FormValue("discord_webhook_url")
	settings.ShowSessionClock = r.FormValue("show_session_clock") != ""

	// Banner and card thumbnail uploads replace the previous files.
	if url, ok := saveFormImage(w, r, "banner_file", "campaigns", settings.BannerURL); ok {
		if url != "" {
			settings.BannerURL = url
		}
	} else {
		return
	}
	if url, ok := saveFormImage(w, r, "thumb_file", "campaigns", settings.ThumbnailURL); ok {
		if url != "" {
			settings.ThumbnailURL = url
		}
	} else {
		return
	}

	if err := store.UpdateCampaign(r.Context(), c); err != nil {
		logger.Error("update campaign", "id", c.ID, "err", err)
		fail("Save failed.")
		return
	}
	if err := store.SaveSettings(r.Context(), settings); err != nil {
		logger.Error("save settings", "campaign", c.ID, "err", err)
		fail("Save failed.")
		return
	}
	http.Redirect(w, r, "/admin/campaigns", http.StatusSeeOther)
}

func handleCampaignDelete(w http.ResponseWriter, r *http.Request) {
	c := campaignForCaller(w, r)
	if c == nil {
		return
	}
	// Remove files owned by the campaign's settings before losing the row.
	if settings, err := store.SettingsByCampaign(r.Context(), c.ID); err == nil {
		uploader.Remove(settings.BannerURL)
		uploader.Remove(settings.ThumbnailURL)
	}
	if err := store.DeleteCampaign(r.Context(), c.ID); err != nil {
		logger.Error("delete campaign", "id", c.ID, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/campaigns", http.StatusSeeOther)
}

func handleWebhookSave(w http.ResponseWriter, r *http.Request) {
	c := campaignForCaller(w, r)
	if c == nil {
		return
	}
	if err := store.SaveWebhookURL(r.Context(), c.ID, strings.TrimSpace(r.FormValue("webhook_url"))); err != nil {
		logger.Error("save webhook", "campaign", c.ID, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/campaigns/"+strconv.FormatInt(c.ID, 10)+"/edit", http.StatusSeeOther)
}

// handleWebhookTest is the one notification path that reports failure to
// the caller: its purpose is validating the webhook interactively.
func handleWebhookTest(w http.ResponseWriter, r *http.Request) {
	c := campaignForCaller(w, r)
	if c == nil {
		return
	}
	ok, msg := notifier.Test(r.Context(), c)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": ok, "message": msg})
}

func formValueOr(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

// saveFormImage stores an optional image field. Returns ("", true) when
// the field was absent, (url, true) on success; on validation failure it
// writes the response itself and returns ok=false.
func saveFormImage(w http.ResponseWriter, r *http.Request, field, subdir, previousURL string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", true
	}
	defer file.Close()

	url, err := uploader.Save(file, header.Filename, header.Size, subdir, previousURL)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedFormat) || errors.Is(err, upload.ErrEmptyFile) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			logger.Error("image upload", "field", field, "err", err)
			http.Error(w, "Save failed", http.StatusInternalServerError)
		}
		return "", false
	}
	return url, true
}
