package main

import (
	"context"
	"net/http"

	"gmportal/internal/db"
	"gmportal/internal/policy"
)

type contextKey string

const userKey contextKey = "user"

const authCookie = "auth"

func currentUser(r *http.Request) *db.Account {
	if u, ok := r.Context().Value(userKey).(*db.Account); ok {
		return u
	}
	return nil
}

// resolveAccount loads the account behind the credential cookie, if any.
// The account is always read fresh from the store so privilege changes
// apply to the next request.
func resolveAccount(r *http.Request) *db.Account {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return nil
	}
	claims, err := authsvc.ParseToken(cookie.Value)
	if err != nil {
		return nil
	}
	acc, err := store.AccountByID(r.Context(), claims.AccountID)
	if err != nil {
		return nil
	}
	return acc
}

// authMiddleware requires a valid credential cookie and puts the caller's
// account into the request context.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc := resolveAccount(r)
		if acc == nil {
			http.SetCookie(w, &http.Cookie{Name: authCookie, MaxAge: -1, Path: "/"})
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, acc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRank gates a handler on a minimum privilege level.
func requireRank(min db.AccountType, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		if u == nil || u.AccountType < min {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func requireMaster(next http.HandlerFunc) http.HandlerFunc {
	return requireRank(db.TypeMaster, next)
}

func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return requireRank(db.TypeAdministrator, next)
}

// maintenanceGate blocks public pages while maintenance mode is active.
// Elevated accounts pass through so they can inspect the live site.
func maintenanceGate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		global, err := store.Global(r.Context())
		if err == nil && global.MaintenanceActive && !policy.Elevated(resolveAccount(r)) {
			w.WriteHeader(http.StatusServiceUnavailable)
			renderTemplate(w, "maintenance.html", map[string]any{
				"Message": global.MaintenanceMessage,
			})
			return
		}
		next(w, r)
	}
}
