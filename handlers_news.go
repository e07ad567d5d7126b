package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gmportal/internal/db"
	"gmportal/internal/policy"
	"gmportal/internal/upload"
)

// contextWithTimeout backs detached work that must not inherit the
// request's cancellation.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// newsForCaller loads a news item and enforces the ownership policy.
func newsForCaller(w http.ResponseWriter, r *http.Request) *db.News {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	n, err := store.NewsByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		logger.Error("load news", "id", id, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return nil
	}
	if err := policy.Authorize(currentUser(r), n.AuthorID); err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil
	}
	return n
}

func handleNewsList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	news, err := store.ListNews(r.Context(), policy.ListScope(u))
	if err != nil {
		logger.Error("list news", "err", err)
	}
	renderTemplate(w, "admin_news.html", map[string]any{
		"User": u,
		"News": news,
	})
}

func handleNewsCreateForm(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	campaigns, _ := store.ListCampaigns(r.Context(), policy.ListScope(u))
	renderTemplate(w, "admin_news_form.html", map[string]any{
		"User":       u,
		"Campaigns":  campaigns,
		"Categories": db.Categories,
	})
}

func handleNewsCreate(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	r.ParseMultipartForm(16 << 20)

	fail := func(msg string) {
		campaigns, _ := store.ListCampaigns(r.Context(), policy.ListScope(u))
		renderTemplate(w, "admin_news_form.html", map[string]any{
			"User": u, "Campaigns": campaigns, "Categories": db.Categories, "Error": msg,
		})
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		fail("Title is required.")
		return
	}
	campaignID, _ := strconv.ParseInt(r.FormValue("campaign_id"), 10, 64)
	campaign, err := store.CampaignByID(r.Context(), campaignID)
	if err != nil {
		fail("Choose a campaign.")
		return
	}
	// Publishing into a campaign requires owning it (or elevation).
	if err := policy.Authorize(u, campaign.CreatorID); err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	n := &db.News{
		AuthorID:    u.ID,
		CampaignID:  campaign.ID,
		Title:       title,
		Content:     r.FormValue("content"),
		AuthorName:  formValueOr(r, "author_name", u.Name),
		PublishedAt: time.Now(),
		Category:    formValueOr(r, "category", db.CategoryUpdate),
		ImageURL:    upload.DefaultNewsImage,
	}

	if url, ok := saveFormImage(w, r, "image_file", "news", ""); ok {
		if url != "" {
			n.ImageURL = url
		}
	} else {
		return
	}

	if err := store.CreateNews(r.Context(), n); err != nil {
		logger.Error("create news", "err", err)
		fail("Save failed.")
		return
	}

	// Fire-and-forget: publishing already committed, notification failure
	// stays out of the response path.
	if r.FormValue("send_discord") != "" {
		news, campaign := *n, *campaign
		go func() {
			ctx, cancel := contextWithTimeout()
			defer cancel()
			notifier.Dispatch(ctx, &news, &campaign)
		}()
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func handleNewsDetail(w http.ResponseWriter, r *http.Request) {
	n := newsForCaller(w, r)
	if n == nil {
		return
	}
	campaign, _ := store.CampaignByID(r.Context(), n.CampaignID)
	renderTemplate(w, "admin_news_detail.html", map[string]any{
		"User": currentUser(r), "News": n, "Campaign": campaign,
	})
}

func handleNewsEditForm(w http.ResponseWriter, r *http.Request) {
	n := newsForCaller(w, r)
	if n == nil {
		return
	}
	u := currentUser(r)
	campaigns, _ := store.ListCampaigns(r.Context(), policy.ListScope(u))
	renderTemplate(w, "admin_news_form.html", map[string]any{
		"User": u, "News": n, "Campaigns": campaigns, "Categories": db.Categories,
	})
}

func handleNewsEdit(w http.ResponseWriter, r *http.Request) {
	n := newsForCaller(w, r)
	if n == nil {
		return
	}
	u := currentUser(r)
	r.ParseMultipartForm(16 << 20)

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	if cid, _ := strconv.ParseInt(r.FormValue("campaign_id"), 10, 64); cid != 0 && cid != n.CampaignID {
		campaign, err := store.CampaignByID(r.Context(), cid)
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err := policy.Authorize(u, campaign.CreatorID); err != nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		n.CampaignID = campaign.ID
	}

	n.Title = title
	n.Content = r.FormValue("content")
	n.Category = formValueOr(r, "category", n.Category)
	n.AuthorName = formValueOr(r, "author_name", n.AuthorName)

	// A replacement image deletes the previous file unless it is the
	// shared default.
	if url, ok := saveFormImage(w, r, "image_file", "news", n.ImageURL); ok {
		if url != "" {
			n.ImageURL = url
		}
	} else {
		return
	}

	if err := store.UpdateNews(r.Context(), n); err != nil {
		logger.Error("update news", "id", n.ID, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func handleNewsDelete(w http.ResponseWriter, r *http.Request) {
	n := newsForCaller(w, r)
	if n == nil {
		return
	}
	uploader.Remove(n.ImageURL)
	if err := store.DeleteNews(r.Context(), n.ID); err != nil {
		logger.Error("delete news", "id", n.ID, "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
