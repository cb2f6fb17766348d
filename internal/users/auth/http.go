// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/constants"
	"github.com/compatdex/compatdex/internal/platform/middleware"
	requestutil "github.com/compatdex/compatdex/internal/platform/request"
	"github.com/compatdex/compatdex/internal/platform/respond"
	"github.com/compatdex/compatdex/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for identity and role administration.
type Handler struct {
	service *Service
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with authentication endpoints.
//
// # Routing Strategy
//
//   - Credential Exchange (Public): Register, login, refresh, logout.
//   - Profile (Restricted): The authenticated caller only.
//   - Role Administration (Restricted): ADMIN and above.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Credential Exchange
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	// ## Authenticated Profile
	router.Group(func(members chi.Router) {
		members.Use(middleware.RequireAuth)

		members.Get("/me", handler.me)
	})

	// ## Role Administration
	router.Group(func(admins chi.Router) {
		admins.Use(middleware.RequireRole(sec.RoleAdmin))

		admins.Patch("/users/{userID}/role", handler.changeRole)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// setRefreshCookie injects the rotated refresh token as an HTTP-only cookie
// scoped to the auth endpoints.
func setRefreshCookie(writer http.ResponseWriter, value string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    value,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// # Endpoints

/*
POST /api/v1/auth/register.

Request:
  - username, email, password: string

Response:
  - 201: User: Created at the USER tier
  - 409: CONFLICT: Username or email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var body registerRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Register(request.Context(), RegisterInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials, returns a JWT access token, and injects
a secure refresh token cookie into the response.

Request:
  - login: string (username or email)
  - password: string

Response:
  - 200: Session: Access token and user profile
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var body loginRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), LoginInput{
		Login:    body.Login,
		Password: body.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, map[string]any{
		"access_token": session.AccessToken,
		"user":         session.User,
	})
}

/*
POST /api/v1/auth/refresh.

Description: Rotates the session by validating the refresh token cookie and
issuing a fresh access token and an updated refresh cookie.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.service.RefreshSession(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, map[string]any{
		"access_token": session.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   constants.AccessTokenTTL / time.Second,
	})
}

/*
POST /api/v1/auth/logout.

Description: Revokes the refresh token (if present) and clears the cookie.
Always succeeds.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err == nil && cookie.Value != "" {
		_ = handler.service.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
GET /api/v1/auth/me.

Response:
  - 200: User: The authenticated caller's account
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/auth/users/{userID}/role.

Description: Moves a user to a different role tier. The actor must outrank
both the current and the assigned role.

Request:
  - role: user | author | developer | moderator | admin | super_admin

Response:
  - 200: User: Updated record
  - 403: ErrForbidden: Outranking check failed
  - 409: INVALID_TRANSITION: Role unchanged
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body changeRoleRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetUserID := requestutil.ID(request, "userID")

	updated, err := handler.service.ChangeRole(request.Context(), actorID, actorRole, targetUserID, sec.UserRole(body.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}
