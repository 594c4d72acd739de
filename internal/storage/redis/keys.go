package redis

import (
	"fmt"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Key prefix for all ledger data
const keyPrefix = "trackmyhand"

// gameKey returns the Redis key for a Game snapshot
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the ZSET of game ids scored by start time
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// userKey returns the Redis key for a User profile
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usersByProfitKey returns the ZSET of user ids scored by total profit
func usersByProfitKey() string {
	return fmt.Sprintf("%s:idx:users_by_profit", keyPrefix)
}
