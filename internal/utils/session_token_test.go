package utils

import (
	"testing"
	"time"
)

func TestSignAndParseSession(t *testing.T) {
	token, err := SignSession(7, "alice", false, "sid-123", "secret", time.Hour)
	if err != nil {
		t.Fatalf("SignSession: %v", err)
	}
	claims, err := ParseSession(token, "secret")
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "alice" || claims.IsAdmin || claims.SessionID != "sid-123" {
		t.Fatalf("claims round-trip mismatch: %+v", claims)
	}
}

func TestParseSessionRejectsWrongSecret(t *testing.T) {
	token, err := SignSession(7, "alice", true, "sid-123", "secret", time.Hour)
	if err != nil {
		t.Fatalf("SignSession: %v", err)
	}
	if _, err := ParseSession(token, "other-secret"); err == nil {
		t.Fatalf("token signed with a different secret must not parse")
	}
}

func TestParseSessionRejectsExpired(t *testing.T) {
	token, err := SignSession(7, "alice", false, "sid-123", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("SignSession: %v", err)
	}
	if _, err := ParseSession(token, "secret"); err == nil {
		t.Fatalf("expired token must not parse")
	}
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	if _, err := ParseSession("not-a-token", "secret"); err == nil {
		t.Fatalf("garbage token must not parse")
	}
}
