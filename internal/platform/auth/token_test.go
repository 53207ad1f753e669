package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, time.Hour)
	accountID := uuid.New()

	token, err := issuer.Issue(accountID, RoleAdmin, "Sam Admin")
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	claims, err := ParseToken(testSigningKey, token)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}

	if claims.Subject != accountID.String() {
		t.Errorf("subject: got %q, want %q", claims.Subject, accountID.String())
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role: got %q, want %q", claims.Role, RoleAdmin)
	}
	if claims.Name != "Sam Admin" {
		t.Errorf("name: got %q, want %q", claims.Name, "Sam Admin")
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("issuer: got %q, want %q", claims.Issuer, tokenIssuer)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken(testSigningKey, "not-a-token"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestParseToken_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, -time.Minute)
	token, err := issuer.Issue(uuid.New(), RoleDonor, "Jane Doe")
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	if _, err := ParseToken(testSigningKey, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}
