package model

import (
	"fmt"
	"strconv"
	"time"
)

// Rank is the privilege level of an account
type Rank int

const (
	RankPlayer Rank = iota
	RankModerator
	RankAdmin
	RankBanned
)

func (r Rank) String() string {
	switch r {
	case RankPlayer:
		return "player"
	case RankModerator:
		return "moderator"
	case RankAdmin:
		return "admin"
	case RankBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// Position is a point in world coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Account is the persisted record of a player login
type Account struct {
	Username     string    `json:"username"` // unique, case-sensitive
	PasswordHash string    `json:"password"` // bcrypt hash
	Email        string    `json:"email"`    // optional, unique when non-empty
	Rank         Rank      `json:"rank"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	CreatedAt    time.Time `json:"creationTime"`
}

// Position returns the account's stored world position
func (a *Account) Position() Position {
	return Position{X: a.X, Y: a.Y}
}

// Clone returns a copy that shares no state with the receiver
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// ParseRank accepts a rank name or its numeric value
func ParseRank(s string) (Rank, error) {
	for r := RankPlayer; r <= RankBanned; r++ {
		if s == r.String() || s == strconv.Itoa(int(r)) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRank, s)
}
