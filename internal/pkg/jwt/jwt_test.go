package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestSignParse(t *testing.T) {
	s, err := New("secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	token, err := s.Sign("user-1", "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "sess-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	s, _ := New("secret")
	other, _ := New("other")

	foreign, _ := other.Sign("u", "s", time.Hour)
	expired, _ := s.Sign("u", "s", -time.Minute)
	noSession, _ := s.Sign("u", "", time.Hour)

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"foreign":    foreign,
		"expired":    expired,
		"no session": noSession,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewRejectsEmptySecret(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error")
	}
}
