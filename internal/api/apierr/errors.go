package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"

	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeProfileNotFound      = "PROFILE_NOT_FOUND"
	CodeProfileAlreadyExists = "PROFILE_ALREADY_EXISTS"
	CodeTooManyActiveGames   = "TOO_MANY_ACTIVE_GAMES"
	CodeAlreadyInitialized   = "ALREADY_INITIALIZED"
	CodeNotInitialized       = "NOT_INITIALIZED"

	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeGameAlreadyStarted  = "GAME_ALREADY_STARTED"
	CodeGameIsFull          = "GAME_IS_FULL"
	CodePlayerAlreadyInGame = "PLAYER_ALREADY_IN_GAME"
	CodeGameIsSinglePlayer  = "GAME_IS_SINGLE_PLAYER"
	CodeInvalidMapSize      = "INVALID_MAP_SIZE"
	CodeInvalidMaxPlayers   = "INVALID_MAX_PLAYERS"
	CodeInvalidBotStrategy  = "INVALID_BOT_STRATEGY"
	CodeInvalidPlayer       = "INVALID_PLAYER"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeOutOfBounds         = "OUT_OF_BOUNDS"

	CodeTileNotOwned            = "TILE_NOT_OWNED"
	CodeDifferentUnitTypeOnTile = "DIFFERENT_UNIT_TYPE_ON_TILE"
	CodeRequiresTankFactory     = "REQUIRES_TANK_FACTORY"
	CodeRequiresPlaneFactory    = "REQUIRES_PLANE_FACTORY"
	CodeInvalidUnitType         = "INVALID_UNIT_TYPE"
	CodeInvalidQuantity         = "INVALID_QUANTITY"
	CodeInsufficientFunds       = "INSUFFICIENT_FUNDS"
	CodeTooManyUnits            = "TOO_MANY_UNITS"

	CodeNotYourUnits                = "NOT_YOUR_UNITS"
	CodeNoUnitsToMove               = "NO_UNITS_TO_MOVE"
	CodeInvalidMovement             = "INVALID_MOVEMENT"
	CodeNotEnoughStamina            = "NOT_ENOUGH_STAMINA"
	CodeTileOccupiedByOtherUnitType = "TILE_OCCUPIED_BY_OTHER_UNIT_TYPE"
	CodeNotEnoughAttackPoints       = "NOT_ENOUGH_ATTACK_POINTS"

	CodeNotYourTile          = "NOT_YOUR_TILE"
	CodeNotEnoughFunds       = "NOT_ENOUGH_FUNDS"
	CodeBuildingTypeMismatch = "BUILDING_TYPE_MISMATCH"
	CodeMaxLevelReached      = "MAX_LEVEL_REACHED"
	CodeCannotBuildBase      = "CANNOT_BUILD_BASE"
	CodeInvalidBuildingType  = "INVALID_BUILDING_TYPE"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

type mapping struct {
	err    error
	status int
	code   string
}

// mappings is checked in order with errors.Is; the message is the error's own text
var mappings = []mapping{
	// Registry and profiles
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrProfileNotFound, http.StatusNotFound, CodeProfileNotFound},
	{model.ErrProfileAlreadyExists, http.StatusConflict, CodeProfileAlreadyExists},
	{model.ErrTooManyActiveGames, http.StatusConflict, CodeTooManyActiveGames},
	{model.ErrAlreadyInitialized, http.StatusConflict, CodeAlreadyInitialized},
	{model.ErrNotInitialized, http.StatusConflict, CodeNotInitialized},

	// Sessions
	{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound},
	{model.ErrGameAlreadyStarted, http.StatusConflict, CodeGameAlreadyStarted},
	{model.ErrGameIsFull, http.StatusConflict, CodeGameIsFull},
	{model.ErrPlayerAlreadyInGame, http.StatusConflict, CodePlayerAlreadyInGame},
	{model.ErrGameIsSinglePlayer, http.StatusConflict, CodeGameIsSinglePlayer},
	{model.ErrInvalidMapSize, http.StatusBadRequest, CodeInvalidMapSize},
	{model.ErrInvalidMaxPlayers, http.StatusBadRequest, CodeInvalidMaxPlayers},
	{model.ErrInvalidBotStrategy, http.StatusBadRequest, CodeInvalidBotStrategy},
	{model.ErrInvalidPlayer, http.StatusForbidden, CodeInvalidPlayer},
	{model.ErrNotYourTurn, http.StatusForbidden, CodeNotYourTurn},
	{model.ErrOutOfBounds, http.StatusBadRequest, CodeOutOfBounds},

	// Recruitment
	{model.ErrTileNotOwned, http.StatusForbidden, CodeTileNotOwned},
	{model.ErrDifferentUnitTypeOnTile, http.StatusConflict, CodeDifferentUnitTypeOnTile},
	{model.ErrRequiresTankFactory, http.StatusConflict, CodeRequiresTankFactory},
	{model.ErrRequiresPlaneFactory, http.StatusConflict, CodeRequiresPlaneFactory},
	{model.ErrInvalidUnitType, http.StatusBadRequest, CodeInvalidUnitType},
	{model.ErrInvalidQuantity, http.StatusBadRequest, CodeInvalidQuantity},
	{model.ErrInsufficientFunds, http.StatusConflict, CodeInsufficientFunds},
	{model.ErrTooManyUnits, http.StatusConflict, CodeTooManyUnits},

	// Movement
	{model.ErrNotYourUnits, http.StatusForbidden, CodeNotYourUnits},
	{model.ErrNoUnitsToMove, http.StatusConflict, CodeNoUnitsToMove},
	{model.ErrInvalidMovement, http.StatusBadRequest, CodeInvalidMovement},
	{model.ErrNotEnoughStamina, http.StatusConflict, CodeNotEnoughStamina},
	{model.ErrTileOccupiedByOtherUnitType, http.StatusConflict, CodeTileOccupiedByOtherUnitType},
	{model.ErrNotEnoughAttackPoints, http.StatusConflict, CodeNotEnoughAttackPoints},

	// Construction
	{model.ErrNotYourTile, http.StatusForbidden, CodeNotYourTile},
	{model.ErrNotEnoughFunds, http.StatusConflict, CodeNotEnoughFunds},
	{model.ErrBuildingTypeMismatch, http.StatusConflict, CodeBuildingTypeMismatch},
	{model.ErrMaxLevelReached, http.StatusConflict, CodeMaxLevelReached},
	{model.ErrCannotBuildBase, http.StatusBadRequest, CodeCannotBuildBase},
	{model.ErrInvalidBuildingType, http.StatusBadRequest, CodeInvalidBuildingType},

	// Auth
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
	{auth.ErrUsernameExists, http.StatusConflict, CodeUsernameExists},
	{auth.ErrInvalidDisplayName, http.StatusBadRequest, CodeInvalidRequest},
	{auth.ErrInvalidUsername, http.StatusBadRequest, CodeInvalidRequest},
	{auth.ErrPasswordTooShort, http.StatusBadRequest, CodeInvalidRequest},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status and code an error is reported with
func Status(err error) (int, string) {
	he := toHTTPError(err)
	return he.status, he.apiError.Code
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, m.err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewRateLimitedError creates a too many requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
