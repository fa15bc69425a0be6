package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamedb-go/internal/api/request"
	"github.com/mcoot/gamedb-go/internal/api/response"
	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/services/account"
)

// AccountHandler handles account endpoints
type AccountHandler struct {
	accounts *account.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
	}
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	sess := &httpSession{username: req.Username, password: req.Password}
	if err := h.accounts.Login(r.Context(), sess); err != nil {
		WriteError(w, err)
		return
	}
	if sess.rejected != "" {
		WriteError(w, NewRejectError(sess.rejected))
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(sess.account))
}

// Register handles POST /api/v1/accounts/register.
// An admitted registration is committed before responding.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	sess := &httpSession{username: req.Username, password: req.Password, email: req.Email}
	if err := h.accounts.Register(r.Context(), sess); err != nil {
		WriteError(w, err)
		return
	}
	if sess.rejected != "" {
		WriteError(w, NewRejectError(sess.rejected))
		return
	}

	code, err := h.accounts.Commit(r.Context(), sess.account)
	if err != nil {
		WriteError(w, err)
		return
	}
	if code != "" {
		WriteError(w, NewRejectError(code))
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(sess.account))
}

// Exists handles GET /api/v1/accounts/{username}/exists
func (h *AccountHandler) Exists(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	exists, err := h.accounts.Exists(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ExistsResponse{Username: username, Exists: exists})
}

// SetRank handles PUT /api/v1/accounts/{username}/rank
func (h *AccountHandler) SetRank(w http.ResponseWriter, r *http.Request) {
	var req request.SetRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	rank, err := model.ParseRank(req.Rank)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.accounts.SetRank(r.Context(), mux.Vars(r)["username"], rank); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SavePosition handles PUT /api/v1/accounts/{username}/position.
// The game server calls it when a session ends.
func (h *AccountHandler) SavePosition(w http.ResponseWriter, r *http.Request) {
	var req request.SavePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.X == nil || req.Y == nil {
		WriteError(w, NewInvalidRequestError("x and y are required"))
		return
	}

	pos := model.Position{X: *req.X, Y: *req.Y}
	if err := h.accounts.SavePosition(r.Context(), mux.Vars(r)["username"], pos); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Count handles GET /api/v1/accounts/count
func (h *AccountHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.accounts.RegisteredCount(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CountResponse{Count: count})
}
