package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound       = errors.New("player not found")
	ErrUsernameTaken        = errors.New("username is taken by another player")
	ErrProfileNotFound      = errors.New("player profile not found")
	ErrProfileAlreadyExists = errors.New("player profile already exists")
	ErrTooManyActiveGames   = errors.New("player has too many active games")

	// Registry errors
	ErrAlreadyInitialized = errors.New("program is already initialized")
	ErrNotInitialized     = errors.New("program is not initialized")

	// Session errors
	ErrGameNotFound        = errors.New("game not found")
	ErrGameAlreadyStarted  = errors.New("game has already started")
	ErrGameIsFull          = errors.New("game is full")
	ErrPlayerAlreadyInGame = errors.New("player is already in game")
	ErrGameIsSinglePlayer  = errors.New("game is single player")
	ErrInvalidMapSize      = errors.New("invalid map size")
	ErrInvalidMaxPlayers   = errors.New("invalid max players")
	ErrInvalidBotStrategy  = errors.New("invalid bot strategy")
	ErrInvalidPlayer       = errors.New("player is not in this game")
	ErrNotYourTurn         = errors.New("not your turn")

	// Map errors
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// Recruitment errors
	ErrTileNotOwned            = errors.New("tile not owned by player")
	ErrDifferentUnitTypeOnTile = errors.New("tile holds a different unit type")
	ErrRequiresTankFactory     = errors.New("recruiting tanks requires a tank factory")
	ErrRequiresPlaneFactory    = errors.New("recruiting planes requires a plane factory")
	ErrInvalidUnitType         = errors.New("invalid unit type")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrTooManyUnits            = errors.New("too many units on tile")

	// Movement errors
	ErrNotYourUnits                = errors.New("source tile is not yours")
	ErrNoUnitsToMove               = errors.New("no units to move")
	ErrInvalidMovement             = errors.New("destination is not adjacent")
	ErrNotEnoughStamina            = errors.New("not enough stamina")
	ErrTileOccupiedByOtherUnitType = errors.New("tile is occupied by another unit type")
	ErrNotEnoughAttackPoints       = errors.New("not enough attack points")

	// Construction errors
	ErrNotYourTile          = errors.New("not your tile")
	ErrNotEnoughFunds       = errors.New("not enough funds")
	ErrBuildingTypeMismatch = errors.New("building type mismatch")
	ErrMaxLevelReached      = errors.New("building is at max level")
	ErrCannotBuildBase      = errors.New("bases cannot be built")
	ErrInvalidBuildingType  = errors.New("invalid building type")
)
