package redis

import (
	"fmt"

	"github.com/mcoot/conquest-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "conquest"

// Key generation functions for each entity type

// superKey returns the Redis key for the program-wide Registry
func superKey() string {
	return fmt.Sprintf("%s:super", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// credentialsKey returns the Redis key for a RegisteredPlayer
func credentialsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// profileKey returns the Redis key for a PlayerProfile
func profileKey(player model.PlayerID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, player)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}
