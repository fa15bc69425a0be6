package handler

import (
	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/services/account"
)

// httpSession carries one request's credentials through the account service
type httpSession struct {
	username string
	password string
	email    string

	rejected account.RejectCode
	account  *model.Account
}

var _ account.Session = (*httpSession)(nil)

func (s *httpSession) Username() string { return s.username }
func (s *httpSession) Password() string { return s.password }
func (s *httpSession) Email() string    { return s.email }

func (s *httpSession) Reject(code account.RejectCode) {
	s.rejected = code
}

func (s *httpSession) Load(a *model.Account) {
	s.account = a
}
