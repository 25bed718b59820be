package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	MaxPlayers    int    `json:"max_players"`
	IsMultiplayer bool   `json:"is_multiplayer"`
	MapSize       string `json:"map_size"`
	BotStrategy   string `json:"bot_strategy,omitempty"`
}

// Position addresses a tile
type Position struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// Valid reports whether both coordinates were supplied
func (p Position) Valid() bool {
	return p.Row != nil && p.Col != nil
}

// MoveRequest is the request body for moving a stack
type MoveRequest struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// RecruitRequest is the request body for recruiting units
type RecruitRequest struct {
	UnitType string   `json:"unit_type"`
	Quantity int      `json:"quantity"`
	At       Position `json:"at"`
}

// BuildRequest is the request body for building or upgrading
type BuildRequest struct {
	BuildingType string   `json:"building_type"`
	At           Position `json:"at"`
}
