package httpapi

import (
	"net/http"

	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
)

func NewAuthController(sessions *auth.Manager, client *backend.Client) *AuthController {
	return &AuthController{sessions: sessions, client: client}
}

var _ httpserver.Controller = (*AuthController)(nil)

type AuthController struct {
	sessions *auth.Manager
	client   *backend.Client
}

func (c *AuthController) AddRoutes(router *http.ServeMux) {
	router.Handle("POST /v1/auth/login", c.login())
	router.Handle("POST /v1/auth/logout", c.logout())
	router.Handle("GET /v1/auth/whoami", auth.RequireAuthenticated(c.sessions, c.whoami()))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	Subject       string `json:"subject,omitempty"`
}

func (c *AuthController) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Email == "" || body.Password == "" {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		if err := c.client.Login(r.Context(), body.Email, body.Password); err != nil {
			httpserver.ReplyWithError(w, backend.HTTPStatus(err), err.Error())
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, sessionResponse{
			Authenticated: true,
			Role:          string(c.sessions.Role()),
			Subject:       c.sessions.Subject(),
		})
	}
}

func (c *AuthController) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.sessions.Logout(r.Context()); err != nil {
			httpserver.ReplyWithError(w, http.StatusInternalServerError, "failed to clear session")
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, sessionResponse{Authenticated: false})
	}
}

// whoami reports the console session plus the upstream's view of the
// account, so the UI can render both without a second round trip.
func (c *AuthController) whoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := c.client.WhoAmI(r.Context())
		if err != nil {
			httpserver.ReplyWithError(w, backend.HTTPStatus(err), err.Error())
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, map[string]any{
			"authenticated": c.sessions.Authenticated(),
			"role":          c.sessions.Role(),
			"user":          user,
		})
	}
}
