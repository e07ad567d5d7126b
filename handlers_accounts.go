package main

import (
	"errors"
	"net/http"
	"strconv"

	"gmportal/internal/auth"
	"gmportal/internal/db"
)

// Account administration is Administrator-only; unlike self-registration
// it may assign any privilege level.

func handleAccountList(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.ListAccounts(r.Context())
	if err != nil {
		logger.Error("list accounts", "err", err)
	}
	global, _ := store.Global(r.Context())
	renderTemplate(w, "admin_accounts.html", map[string]any{
		"User":     currentUser(r),
		"Accounts": accounts,
		"Global":   global,
	})
}

func handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	accountType, _ := strconv.Atoi(r.FormValue("account_type"))
	campaignID, _ := strconv.ParseInt(r.FormValue("campaign_id"), 10, 64)

	_, err := authsvc.CreateAccount(r.Context(), auth.RegisterInput{
		Name:            r.FormValue("name"),
		Username:        r.FormValue("username"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("password"),
		AccountType:     db.AccountType(accountType),
		CampaignID:      campaignID,
	})
	if err != nil {
		msg := "Could not create the account."
		if errors.Is(err, auth.ErrDuplicateUsername) || errors.Is(err, auth.ErrValidation) {
			msg = err.Error()
		} else {
			logger.Error("admin create account", "err", err)
		}
		accounts, _ := store.ListAccounts(r.Context())
		global, _ := store.Global(r.Context())
		renderTemplate(w, "admin_accounts.html", map[string]any{
			"User": currentUser(r), "Accounts": accounts, "Global": global, "Error": msg,
		})
		return
	}
	http.Redirect(w, r, "/admin/accounts", http.StatusSeeOther)
}

func handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if id == u.ID {
		http.Error(w, "You cannot delete your own account", http.StatusBadRequest)
		return
	}

	err := store.DeleteAccount(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		// Campaign creators are delete-restricted; surface it plainly.
		logger.Error("delete account", "id", id, "err", err)
		http.Error(w, "Save failed: the account may still own campaigns", http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/admin/accounts", http.StatusSeeOther)
}

func handleMaintenanceToggle(w http.ResponseWriter, r *http.Request) {
	active := r.FormValue("active") != ""
	message := formValueOr(r, "message", "The portal is under maintenance.")
	if err := store.SetMaintenance(r.Context(), active, message); err != nil {
		logger.Error("set maintenance", "err", err)
		http.Error(w, "Save failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/accounts", http.StatusSeeOther)
}
