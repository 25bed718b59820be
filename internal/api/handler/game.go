package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/conquest-go/internal/api/middleware"
	"github.com/mcoot/conquest-go/internal/api/request"
	"github.com/mcoot/conquest-go/internal/api/response"
	"github.com/mcoot/conquest-go/internal/api/stream"
	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/game"
)

// GameHandler handles game session endpoints
type GameHandler struct {
	games game.ControllerInterface
	hubs  *stream.HubManager
}

// NewGameHandler creates a new game handler
func NewGameHandler(games game.ControllerInterface, hubs *stream.HubManager) *GameHandler {
	return &GameHandler{
		games: games,
		hubs:  hubs,
	}
}

// gameID reads the {id} route variable
func gameID(r *http.Request) (model.GameID, error) {
	return model.ParseGameID(mux.Vars(r)["id"])
}

func position(p request.Position) model.Position {
	return model.Position{Row: *p.Row, Col: *p.Col}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.MapSize == "" {
		req.MapSize = string(model.MapSmall)
	}

	g, err := h.games.CreateGame(r.Context(), player.ID, game.CreateOptions{
		MaxPlayers:    req.MaxPlayers,
		IsMultiplayer: req.IsMultiplayer,
		MapSize:       model.MapSize(req.MapSize),
		BotStrategy:   req.BotStrategy,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.JoinGame(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Move handles POST /api/v1/games/{id}/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.MoveRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.From.Valid() || !req.To.Valid() {
		WriteError(w, NewInvalidRequestError("from and to need row and col"))
		return
	}

	out, err := h.games.MoveUnit(r.Context(), id, player.ID, position(req.From), position(req.To))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoveResponseFromOutcome(out))
}

// Recruit handles POST /api/v1/games/{id}/recruit
func (h *GameHandler) Recruit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.RecruitRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.At.Valid() {
		WriteError(w, NewInvalidRequestError("at needs row and col"))
		return
	}
	unitType, err := model.ParseUnitType(req.UnitType)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.games.RecruitUnits(r.Context(), id, player.ID, unitType, req.Quantity, position(req.At))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RecruitResponseFromResult(res))
}

// Build handles POST /api/v1/games/{id}/build
func (h *GameHandler) Build(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.BuildRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.At.Valid() {
		WriteError(w, NewInvalidRequestError("at needs row and col"))
		return
	}
	buildingType, err := model.ParseBuildingType(req.BuildingType)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.games.BuildConstruction(r.Context(), id, player.ID, position(req.At), buildingType)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BuildResponseFromResult(res))
}

// EndTurn handles POST /api/v1/games/{id}/end-turn
func (h *GameHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.games.EndTurn(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.EndTurnResponseFromResult(res, g))
}

// Events handles GET /api/v1/games/{id}/events, upgrading to a websocket
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.games.GetGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	stream.ServeWS(w, r, h.hubs, id, player.ID)
}
