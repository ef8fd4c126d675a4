package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "CorrectHorseBatteryStaple"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid latin username", RegisterRequest{"alice_01", "secret"}, false},
		{"Valid cyrillic username", RegisterRequest{"Алиса", "secret"}, false},
		{"Username too short", RegisterRequest{"al", "secret"}, true},
		{"Username too long", RegisterRequest{strings.Repeat("a", 21), "secret"}, true},
		{"Username with spaces", RegisterRequest{"al ice", "secret"}, true},
		{"Username with punctuation", RegisterRequest{"alice!", "secret"}, true},
		{"Password too short", RegisterRequest{"alice", "abc"}, true},
		{"Missing password", RegisterRequest{"alice", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestRoomPasswordValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateRoomPassword("pwd"))
	req.Error(ValidateRoomPassword("pw"))
	req.Error(ValidateRoomPassword(""))
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-signing-key", time.Hour)

	token, err := issuer.Generate("alice")
	req.NoError(err)

	username, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("alice", username)

	// A token signed with a different key must be rejected
	other := NewTokenIssuer("another-key", time.Hour)
	_, err = other.Validate(token)
	req.Error(err)
}

func TestTokenExpiry(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-signing-key", -time.Minute)

	token, err := issuer.Generate("alice")
	req.NoError(err)

	_, err = issuer.Validate(token)
	req.Error(err)
}
