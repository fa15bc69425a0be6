package response

import (
	"time"

	"github.com/mcoot/gamedb-go/internal/model"
)

// Account represents an account in API responses. The password hash is never sent.
type Account struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Rank      string    `json:"rank"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		Username:  a.Username,
		Email:     a.Email,
		Rank:      a.Rank.String(),
		X:         a.X,
		Y:         a.Y,
		CreatedAt: a.CreatedAt,
	}
}

// ExistsResponse answers an account existence check
type ExistsResponse struct {
	Username string `json:"username"`
	Exists   bool   `json:"exists"`
}

// CountResponse carries the registered account count
type CountResponse struct {
	Count int64 `json:"count"`
}

// HealthResponse reports server and store health
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}
