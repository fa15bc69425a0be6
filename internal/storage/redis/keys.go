package redis

import (
	"fmt"

	"github.com/mcoot/gamedb-go/internal/model"
)

// Key prefix for all persisted game data
const keyPrefix = "gamedb"

// Collection names shared with the other backends
const (
	accountCollection = "account_info"
	questCollection   = "quest_progress"
)

// accountKey returns the Redis key for an account hash
func accountKey(username string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, accountCollection, username)
}

// accountIndexKey returns the Redis key for the SET of all usernames
func accountIndexKey() string {
	return fmt.Sprintf("%s:idx:%s", keyPrefix, accountCollection)
}

// emailIndexKey returns the Redis key for the email -> username index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// questKey returns the Redis key for a player's quest progress document
func questKey(username string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, questCollection, username)
}

// containerKey returns the Redis key for a container document
func containerKey(kind model.ContainerKind, username string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, username)
}

// containerIndexKey returns the Redis key for the SET of container keys of a kind
func containerIndexKey(kind model.ContainerKind) string {
	return fmt.Sprintf("%s:idx:%s", keyPrefix, kind)
}
