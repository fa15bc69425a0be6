package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		candidate Candidate
		wantErr   error
	}{
		{name: "minimal", candidate: Candidate{Username: "a", Password: "abc"}},
		{name: "spaces and underscores", candidate: Candidate{Username: "Sir_Robin 2", Password: "secret"}},
		{name: "with email", candidate: Candidate{Username: "alice", Password: "secret", Email: "alice@example.com"}},
		{name: "max username", candidate: Candidate{Username: strings.Repeat("a", 32), Password: "secret"}},
		{name: "max password", candidate: Candidate{Username: "alice", Password: strings.Repeat("p", 64)}},
		{name: "empty username", candidate: Candidate{Password: "secret"}, wantErr: ErrInvalidUsername},
		{name: "blank username", candidate: Candidate{Username: "  ", Password: "secret"}, wantErr: ErrInvalidUsername},
		{name: "long username", candidate: Candidate{Username: strings.Repeat("a", 33), Password: "secret"}, wantErr: ErrInvalidUsername},
		{name: "punctuation", candidate: Candidate{Username: "alice!", Password: "secret"}, wantErr: ErrInvalidUsername},
		{name: "short password", candidate: Candidate{Username: "alice", Password: "ab"}, wantErr: ErrInvalidPassword},
		{name: "long password", candidate: Candidate{Username: "alice", Password: strings.Repeat("p", 65)}, wantErr: ErrInvalidPassword},
		{name: "multibyte password over bcrypt limit", candidate: Candidate{Username: "alice", Password: strings.Repeat("é", 40)}, wantErr: ErrInvalidPassword},
		{name: "multibyte password at bcrypt limit", candidate: Candidate{Username: "alice", Password: strings.Repeat("é", 36)}},
		{name: "bad email", candidate: Candidate{Username: "alice", Password: "secret", Email: "alice"}, wantErr: ErrInvalidEmail},
		{name: "long email", candidate: Candidate{Username: "alice", Password: "secret", Email: strings.Repeat("a", 60) + "@example.com"}, wantErr: ErrInvalidEmail},
		{name: "profane", candidate: Candidate{Username: "fuckface", Password: "secret"}, wantErr: ErrProfaneUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.candidate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBcryptVerifier(t *testing.T) {
	v := NewBcryptVerifier(bcrypt.MinCost)

	hash, err := v.Hash("secret")
	assert.NoError(t, err)

	ok, err := v.Verify(hash, "secret")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(hash, "wrong")
	assert.NoError(t, err, "a mismatch is not a fault")
	assert.False(t, ok)

	_, err = v.Verify("not-a-bcrypt-hash", "secret")
	assert.Error(t, err, "a malformed hash is a fault")
}
