package handler

import (
	"net/http"

	"github.com/mcoot/conquest-go/internal/api/middleware"
	"github.com/mcoot/conquest-go/internal/api/response"
	"github.com/mcoot/conquest-go/internal/services/registry"
)

// ProgramHandler handles the program registry and player profiles
type ProgramHandler struct {
	registry *registry.Service
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(registry *registry.Service) *ProgramHandler {
	return &ProgramHandler{registry: registry}
}

// Initialize handles POST /api/v1/program/initialize
func (h *ProgramHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registry.InitializeProgram(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RegistryFromModel(reg))
}

// Get handles GET /api/v1/program
func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registry.GetRegistry(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RegistryFromModel(reg))
}

// CreateProfile handles POST /api/v1/profile
func (h *ProgramHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	profile, err := h.registry.CreatePlayerProfile(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.ProfileFromModel(profile))
}

// GetProfile handles GET /api/v1/profile
func (h *ProgramHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	profile, err := h.registry.GetProfile(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}
