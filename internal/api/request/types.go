package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// SavePositionRequest is the request body for recording where a player logged out
type SavePositionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// SetRankRequest is the request body for changing an account's rank.
// Rank accepts a name or its numeric value.
type SetRankRequest struct {
	Rank string `json:"rank"`
}
