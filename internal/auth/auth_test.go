package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifier_UserID(t *testing.T) {
	v := NewVerifier("s3cret", "phantom")

	token, err := GenerateToken("user-1", "s3cret", "phantom", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	got, err := v.UserID(token)
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if got != "user-1" {
		t.Errorf("UserID = %q, want user-1", got)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("s3cret", "phantom")

	wrongSecret, _ := GenerateToken("user-1", "other", "phantom", time.Hour)
	wrongIssuer, _ := GenerateToken("user-1", "s3cret", "someone-else", time.Hour)
	expired, _ := GenerateToken("user-1", "s3cret", "phantom", -time.Minute)
	noSubject, _ := GenerateToken("", "s3cret", "phantom", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", wrongSecret},
		{"wrong issuer", wrongIssuer},
		{"expired", expired},
		{"no subject", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.UserID(tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v := NewVerifier("s3cret", "")

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	signed, err := token.SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.UserID(signed); err == nil {
		t.Error("expected HS512 token to be rejected")
	}
}

func TestVerifier_Disabled(t *testing.T) {
	v := NewVerifier("", "")
	if v.Enabled() {
		t.Error("Enabled() = true with empty secret")
	}

	token, _ := GenerateToken("user-1", "s3cret", "", time.Hour)
	_, err := v.UserID(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
