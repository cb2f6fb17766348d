// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package perm

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/compatdex/compatdex/internal/platform/middleware"
	requestutil "github.com/compatdex/compatdex/internal/platform/request"
	"github.com/compatdex/compatdex/internal/platform/respond"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the permission registry.
type Handler struct {
	service *Service
}

// NewHandler constructs a new permission [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with permission endpoints.
//
// The entire surface is administrative: listing the registry, inspecting a
// user's grants, and granting/revoking.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/", handler.listRegistry)
		admin.Get("/users/{userID}", handler.listGrants)
		admin.Post("/users/{userID}", handler.grant)
		admin.Delete("/users/{userID}/{key}", handler.revoke)
	})

	return router
}

/*
GET /api/v1/permissions.

Description: Returns the full static permission registry.

Response:
  - 200: []Permission: Success
*/
func (handler *Handler) listRegistry(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, All())
}

/*
GET /api/v1/permissions/users/{userID}.

Description: Returns a user's explicit permission grants.

Request:
  - userID: string (UUID)

Response:
  - 200: []*Grant: Success
*/
func (handler *Handler) listGrants(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "userID")

	grants, err := handler.service.ListGrants(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grants)
}

type grantRequest struct {
	PermissionKey string `json:"permission_key"`
}

/*
POST /api/v1/permissions/users/{userID}.

Description: Grants an explicit permission to a user.

Request:
  - userID: string (UUID)
  - permission_key: string

Response:
  - 204: Granted (or already held)
  - 400: ErrValidation: Unknown permission key
*/
func (handler *Handler) grant(writer http.ResponseWriter, request *http.Request) {
	actorID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")

	var body grantRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("permission_key", body.PermissionKey)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Grant(request.Context(), actorID, userID, body.PermissionKey); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/permissions/users/{userID}/{key}.

Description: Revokes an explicit permission grant.

Request:
  - userID: string (UUID)
  - key: string

Response:
  - 204: Revoked
  - 404: ErrNotFound: No such grant
*/
func (handler *Handler) revoke(writer http.ResponseWriter, request *http.Request) {
	actorID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.ID(request, "userID")
	key := chi.URLParam(request, "key")

	if err := handler.service.Revoke(request.Context(), actorID, userID, key); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
