// Package httpapi is the HTTP and websocket surface of the server.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/metrics"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps groups what NewRouter wires together.
type RouterDeps struct {
	Logger    logging.Logger
	SecretKey []byte

	Admin    AdminService
	Presence OnlineLister
	Hub      *Hub

	DB       Pinger
	Gatherer prometheus.Gatherer
}

// NewRouter builds the API router.
//
// Middleware order: RequestID -> Recovery -> Logging, then Auth and role
// checks per route group.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(NewRequestIDMiddleware())
	r.Use(NewRecoveryMiddleware(deps.Logger))
	r.Use(NewLoggingMiddleware(deps.Logger))

	r.Get("/healthz", healthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	var evictor Evictor
	if deps.Hub != nil {
		evictor = deps.Hub
	}
	adminHandler := NewAdminHandler(deps.Admin, evictor, deps.Logger)

	r.Group(func(r chi.Router) {
		r.Use(NewAuthMiddleware(deps.SecretKey))

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(RequireAnyRole(models.RoleAdmin))

			r.Get("/users-with-roles", adminHandler.UsersWithRoles)
			r.Post("/edit-roles/{username}", adminHandler.EditRoles)
			r.Delete("/users/{username}", adminHandler.DeleteUser)
		})

		r.Get("/api/presence/online", onlineUsersHandler(deps.Presence))

		if deps.Hub != nil {
			r.Handle("/hubs/presence", deps.Hub)
		}
	})

	return r
}
