package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"gmportal/internal/db"
)

// The integration API serves the virtual tabletop plugin: it pings the
// portal when a world comes online and pulls the latest session log.

type vttPingRequest struct {
	WorldName   string `json:"world_name"`
	Description string `json:"description"`
}

func handleVTTPing(w http.ResponseWriter, r *http.Request) {
	var req vttPingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorldName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "world data missing"})
		return
	}
	tracker.Ping(req.WorldName)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "seen",
		"message": "World " + req.WorldName + " registered.",
	})
}

func handleVTTStatus(w http.ResponseWriter, r *http.Request) {
	marker, ok := tracker.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no recent ping"})
		return
	}
	writeJSON(w, http.StatusOK, marker)
}

func handleLastSession(w http.ResponseWriter, r *http.Request) {
	news, err := store.LatestSessionLog(r.Context())
	if errors.Is(err, db.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no session logs"})
		return
	}
	if err != nil {
		logger.Error("latest session log", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":   news.Title,
		"content": news.Content,
		"date":    news.PublishedAt.Format("02/01/2006"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
