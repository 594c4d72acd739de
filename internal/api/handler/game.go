package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackmyhand/internal/api/request"
	"github.com/mcoot/trackmyhand/internal/api/response"
	"github.com/mcoot/trackmyhand/internal/api/stream"
	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/services/game"
	"github.com/mcoot/trackmyhand/internal/services/prediction"
	"github.com/mcoot/trackmyhand/internal/services/tracker"
)

// DefaultListLimit caps list endpoints when no limit is given
const DefaultListLimit = 50

// GameHandler handles game-related endpoints
type GameHandler struct {
	games       *game.Controller
	trackers    *tracker.Manager
	predictions *prediction.Service
	streams     *stream.Manager
	events      *stream.Publisher
	logger      *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *game.Controller, trackers *tracker.Manager, predictions *prediction.Service, streams *stream.Manager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		games:       games,
		trackers:    trackers,
		predictions: predictions,
		streams:     streams,
		events:      stream.NewPublisher(streams, logger),
		logger:      logger,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.CreateGame(r.Context(), req.Players, req.BuyIn)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, h.gameResponse(g))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, DefaultListLimit)
	if err != nil {
		WriteError(w, err)
		return
	}

	games, err := h.games.ListGames(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	total, err := h.games.CountGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameListFromModel(games, total))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.gameResponse(g))
}

// AddPlayer handles POST /api/v1/games/{id}/players
func (h *GameHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req request.AddPlayerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.AddPlayer(r.Context(), gameID(r), req.Player)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.respond(w, http.StatusOK, g)
}

// Start handles POST /api/v1/games/{id}/start. The clock starts with the
// game.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.StartGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.trackers.Start(g.ID, g.Elapsed); err != nil {
		WriteError(w, err)
		return
	}
	h.respond(w, http.StatusOK, g)
}

// RecordEntry handles POST /api/v1/games/{id}/entries
func (h *GameHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	var req request.EntryRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	id := gameID(r)
	g, err := h.games.RecordEntry(r.Context(), id, model.EntryRequest{
		Kind:   model.EntryKind(req.Kind),
		From:   req.From,
		To:     req.To,
		Amount: req.Amount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	if g.IsOver() {
		g, err = h.stopClock(r.Context(), id)
		if err != nil {
			WriteError(w, err)
			return
		}
	}
	h.respond(w, http.StatusCreated, g)
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.JoinPlayer(r.Context(), gameID(r), req.Player, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, g)
}

// End handles POST /api/v1/games/{id}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if _, err := h.games.EndGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	g, err := h.stopClock(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.respond(w, http.StatusOK, g)
}

// CashOut handles POST /api/v1/games/{id}/cash-out
func (h *GameHandler) CashOut(w http.ResponseWriter, r *http.Request) {
	var req request.CashOutRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.CashOut(r.Context(), gameID(r), req.Player, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.respond(w, http.StatusOK, g)
}

// Archive handles POST /api/v1/games/{id}/archive. A profile update failure
// still archives the game; it is reported as a warning. Followers get the
// archived game and then a closed event.
func (h *GameHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	// Only an ended game can be archived; anything else keeps its clock
	if g.State == model.GameStateEnded {
		if err := h.trackers.StopAndWait(r.Context(), id); err != nil {
			WriteError(w, err)
			return
		}
	}

	res, err := h.games.ArchiveGame(r.Context(), id)
	if res == nil {
		WriteError(w, err)
		return
	}

	body := response.ArchiveFromResult(res, err)
	if res.Deleted {
		h.events.Close(id, "deleted")
	} else {
		h.events.Publish(id, stream.EventGame, body.Game)
		h.events.Close(id, "archived")
	}
	response.JSON(w, http.StatusOK, body)
}

// Clock handles GET /api/v1/games/{id}/clock
func (h *GameHandler) Clock(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.clock(g))
}

// StartClock handles POST /api/v1/games/{id}/clock/start
func (h *GameHandler) StartClock(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if g.State != model.GameStateActive {
		WriteError(w, model.Statef("clock only runs while game is active, game is %s", g.State))
		return
	}
	if err := h.trackers.Start(g.ID, g.Elapsed); err != nil {
		WriteError(w, err)
		return
	}
	h.respondClock(w, g)
}

// PauseClock handles POST /api/v1/games/{id}/clock/pause
func (h *GameHandler) PauseClock(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	h.trackers.Pause(g.ID)
	h.respondClock(w, g)
}

// ResumeClock handles POST /api/v1/games/{id}/clock/resume
func (h *GameHandler) ResumeClock(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.trackers.Resume(g.ID); err != nil {
		WriteError(w, err)
		return
	}
	h.respondClock(w, g)
}

// Events handles GET /api/v1/games/{id}/events. The stream opens with the
// current game and then carries every change until the game is archived.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	h.streams.Serve(w, r, g.ID, h.gameResponse(g), g.State != model.GameStateArchived)
}

// Predictions handles GET /api/v1/games/{id}/predictions
func (h *GameHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	g, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PredictionsFromModel(h.predictions.PredictGame(r.Context(), g)))
}

// stopClock stops a game's clock, waits for the final checkpoint and
// returns the game as persisted
func (h *GameHandler) stopClock(ctx context.Context, id model.GameID) (*model.Game, error) {
	if err := h.trackers.StopAndWait(ctx, id); err != nil {
		h.logger.Warn("clock did not stop cleanly",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
	return h.games.GetGame(ctx, id)
}

// respond writes g and pushes it to the game's followers
func (h *GameHandler) respond(w http.ResponseWriter, status int, g *model.Game) {
	body := h.gameResponse(g)
	h.events.Publish(g.ID, stream.EventGame, body)
	response.JSON(w, status, body)
}

func (h *GameHandler) respondClock(w http.ResponseWriter, g *model.Game) {
	body := h.clock(g)
	h.events.Publish(g.ID, stream.EventClock, body)
	response.JSON(w, http.StatusOK, body)
}

func (h *GameHandler) gameResponse(g *model.Game) response.Game {
	return response.GameFromModel(g, h.clock(g))
}

// clock prefers the live value of a running clock over the checkpoint
func (h *GameHandler) clock(g *model.Game) response.Clock {
	state := h.trackers.State(g.ID)
	if state == tracker.StateIdle && g.IsOver() {
		state = tracker.StateStopped
	}
	if elapsed, ok := h.trackers.Elapsed(g.ID); ok && !elapsed.Before(g.Elapsed) {
		return response.NewClock(string(state), elapsed)
	}
	return response.NewClock(string(state), g.Elapsed)
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, NewInvalidRequestError("limit must be a non-negative integer")
	}
	return n, nil
}
