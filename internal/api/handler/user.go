package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackmyhand/internal/api/middleware"
	"github.com/mcoot/trackmyhand/internal/api/request"
	"github.com/mcoot/trackmyhand/internal/api/response"
	"github.com/mcoot/trackmyhand/internal/services/profile"
	"github.com/mcoot/trackmyhand/internal/services/stats"
)

// UserHandler handles profile and statistics endpoints
type UserHandler struct {
	profiles   *profile.Service
	aggregator *stats.Aggregator
}

// NewUserHandler creates a new user handler
func NewUserHandler(profiles *profile.Service, aggregator *stats.Aggregator) *UserHandler {
	return &UserHandler{
		profiles:   profiles,
		aggregator: aggregator,
	}
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.ID == "" {
		WriteError(w, NewInvalidRequestError("id is required"))
		return
	}

	user, err := h.profiles.CreateUser(r.Context(), req.ID, req.PIN)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, DefaultListLimit)
	if err != nil {
		WriteError(w, err)
		return
	}

	users, err := h.profiles.ListUsers(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	total, err := h.profiles.CountUsers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.UserList{Users: make([]response.User, len(users)), Total: total}
	for i, u := range users {
		resp.Users[i] = response.UserFromModel(u)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Summary handles GET /api/v1/users/{id}/summary
func (h *UserHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SummaryFromStats(stats.Summarize(user)))
}

// ToggleFavorite handles POST /api/v1/users/{id}/favorite
func (h *UserHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	updated, err := h.profiles.ToggleFavorite(r.Context(), string(user.ID))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(updated))
}

// SetPIN handles PUT /api/v1/users/{id}/pin. An empty new_pin opens the
// profile.
func (h *UserHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.SetPINRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	updated, err := h.profiles.SetPIN(r.Context(), string(user.ID), middleware.PIN(r), req.NewPIN)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(updated))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, stats.DefaultLeaderboardSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	users, err := h.aggregator.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(users))
}

