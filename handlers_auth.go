package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gmportal/internal/auth"
	"gmportal/internal/db"
	"gmportal/internal/upload"
)

func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "login.html", nil)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, cred, err := authsvc.Authenticate(r.Context(), username, password)
	if err != nil {
		// One message for unknown user and wrong password alike.
		renderTemplate(w, "login.html", map[string]any{"Error": "Invalid username or password."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    cred.Token,
		Path:     "/",
		Expires:  cred.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(authCookie); err == nil {
		authsvc.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: authCookie, MaxAge: -1, Path: "/"})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	campaigns, _ := store.ListCampaigns(r.Context(), 0)
	renderTemplate(w, "register.html", map[string]any{"Campaigns": campaigns})
}

func handleRegister(w http.ResponseWriter, r *http.Request) {
	accountType, _ := strconv.Atoi(r.FormValue("account_type"))
	campaignID, _ := strconv.ParseInt(r.FormValue("campaign_id"), 10, 64)

	in := auth.RegisterInput{
		Name:            r.FormValue("name"),
		Username:        r.FormValue("username"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		AccountType:     db.AccountType(accountType),
		CampaignID:      campaignID,
	}

	_, err := authsvc.Register(r.Context(), in)
	if err != nil {
		msg := "Could not create the account."
		switch {
		case errors.Is(err, auth.ErrForbiddenType):
			msg = "That privilege level cannot be chosen at registration."
		case errors.Is(err, auth.ErrDuplicateUsername):
			msg = "That username is already taken."
		case errors.Is(err, auth.ErrValidation):
			msg = err.Error()
		default:
			logger.Error("register", "err", err)
		}
		campaigns, _ := store.ListCampaigns(r.Context(), 0)
		renderTemplate(w, "register.html", map[string]any{"Error": msg, "Campaigns": campaigns})
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func renderProfile(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	data := map[string]any{"User": currentUser(r)}
	data["Campaigns"], _ = store.ListCampaigns(r.Context(), 0)
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, "profile.html", data)
}

func handleProfile(w http.ResponseWriter, r *http.Request) {
	renderProfile(w, r, nil)
}

// handleProfileUpdate edits display fields and the primary campaign
// preference. Privilege is never touched here.
func handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	name := r.FormValue("name")
	if name == "" {
		name = u.Name
	}
	birth := u.BirthDate
	if v := r.FormValue("birth_date"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			birth = parsed
		}
	}
	campaignID, _ := strconv.ParseInt(r.FormValue("campaign_id"), 10, 64)

	if err := store.UpdateAccountProfile(r.Context(), u.ID, name, birth, campaignID); err != nil {
		logger.Error("update profile", "id", u.ID, "err", err)
		renderProfile(w, r, map[string]any{"Error": "Could not save the profile."})
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func handleProfileImage(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	r.ParseMultipartForm(8 << 20)
	file, header, err := r.FormFile("profile_image")
	if err != nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	defer file.Close()

	url, err := uploader.Save(file, header.Filename, header.Size, "profiles", u.ProfileImageURL)
	if err != nil {
		msg := "Could not save the image."
		if errors.Is(err, upload.ErrUnsupportedFormat) {
			msg = "Unsupported image format. Use JPG, PNG or WebP."
		} else if errors.Is(err, upload.ErrEmptyFile) {
			msg = "The uploaded file is empty."
		} else {
			logger.Error("profile image upload", "err", err)
		}
		renderProfile(w, r, map[string]any{"Error": msg})
		return
	}

	if err := store.UpdateAccountProfileImage(r.Context(), u.ID, url); err != nil {
		logger.Error("save profile image url", "err", err)
		renderProfile(w, r, map[string]any{"Error": "Could not save the image."})
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	err := authsvc.ChangePassword(r.Context(), u.ID,
		r.FormValue("current_password"),
		r.FormValue("new_password"),
		r.FormValue("confirm_password"))
	if err != nil {
		msg := "Could not change the password."
		switch {
		case errors.Is(err, auth.ErrValidation):
			msg = err.Error()
		case errors.Is(err, auth.ErrInvalidCredentials):
			msg = "The current password is incorrect."
		default:
			logger.Error("change password", "err", err)
		}
		renderProfile(w, r, map[string]any{"Error": msg})
		return
	}

	renderProfile(w, r, map[string]any{"Success": "Password changed."})
}
