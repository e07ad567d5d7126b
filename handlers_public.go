package main

import (
	"errors"
	"net/http"
	"strconv"

	"gmportal/internal/db"
)

const newsPerPage = 6

func handleHome(w http.ResponseWriter, r *http.Request) {
	campaigns, err := store.ListCampaigns(r.Context(), 0)
	if err != nil {
		logger.Error("list campaigns", "err", err)
	}

	// Thumbnails and call-to-action lines come from each campaign's settings.
	cards := make([]map[string]any, 0, len(campaigns))
	for _, c := range campaigns {
		settings, err := store.SettingsOrDefault(r.Context(), c.ID)
		if err != nil {
			continue
		}
		cards = append(cards, map[string]any{"Campaign": c, "Settings": settings})
	}

	renderTemplate(w, "home.html", map[string]any{"Cards": cards})
}

func handleCampaignFeed(w http.ResponseWriter, r *http.Request) {
	campaign, err := store.CampaignBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, db.ErrNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		logger.Error("campaign by slug", "err", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	settings, err := store.SettingsOrDefault(r.Context(), campaign.ID)
	if err != nil {
		logger.Error("load settings", "campaign", campaign.ID, "err", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	category := r.URL.Query().Get("category")

	news, totalPages, err := store.CampaignFeed(r.Context(), campaign.ID, category, page, newsPerPage)
	if err != nil {
		logger.Error("campaign feed", "campaign", campaign.ID, "err", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, "feed.html", map[string]any{
		"Campaign":   campaign,
		"Settings":   settings,
		"News":       news,
		"Page":       page,
		"TotalPages": totalPages,
		"Category":   category,
		"Categories": db.Categories,
	})
}

func handleCampaignNewsDetail(w http.ResponseWriter, r *http.Request) {
	campaign, err := store.CampaignBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	news, err := store.NewsInCampaign(r.Context(), id, campaign.ID)
	if errors.Is(err, db.ErrNotFound) {
		http.Redirect(w, r, "/c/"+campaign.Slug, http.StatusSeeOther)
		return
	}
	if err != nil {
		logger.Error("news detail", "id", id, "err", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	settings, err := store.SettingsOrDefault(r.Context(), campaign.ID)
	if err != nil {
		logger.Error("load settings", "campaign", campaign.ID, "err", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	renderTemplate(w, "news.html", map[string]any{
		"Campaign": campaign,
		"Settings": settings,
		"News":     news,
	})
}
