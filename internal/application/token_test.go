package application

import (
	"bytes"
	"testing"
)

func TestAccessToken_Deterministic(t *testing.T) {
	t.Parallel()

	secret := []byte("server-secret")
	first := AccessToken(secret, "participant-1", "plan-1")
	second := AccessToken(secret, "participant-1", "plan-1")

	if first == "" {
		t.Fatal("empty token")
	}
	if first != second {
		t.Fatalf("tokens differ for identical input: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(first))
	}
}

func TestAccessToken_VariesPerInput(t *testing.T) {
	t.Parallel()

	secret := []byte("server-secret")
	base := AccessToken(secret, "participant-1", "plan-1")

	if AccessToken(secret, "participant-2", "plan-1") == base {
		t.Fatal("token does not depend on the participant")
	}
	if AccessToken(secret, "participant-1", "plan-2") == base {
		t.Fatal("token does not depend on the planification")
	}
	if AccessToken([]byte("other-secret"), "participant-1", "plan-1") == base {
		t.Fatal("token does not depend on the secret")
	}
}

func TestAccessToken_AmbiguousConcatenation(t *testing.T) {
	t.Parallel()

	// "ab"+"c" and "a"+"bc" must not collide.
	secret := []byte("server-secret")
	if AccessToken(secret, "ab", "c") == AccessToken(secret, "a", "bc") {
		t.Fatal("identifier boundaries are not encoded")
	}
}

func TestAccessToken_LongSecretFolded(t *testing.T) {
	t.Parallel()

	long := bytes.Repeat([]byte("x"), 200)
	token := AccessToken(long, "participant-1", "plan-1")
	if token == "" || len(token) != 64 {
		t.Fatalf("long secrets must still produce a token, got %q", token)
	}
}

func TestTokenMatches(t *testing.T) {
	t.Parallel()

	token := AccessToken([]byte("secret"), "p", "plan")

	if !TokenMatches(token, token) {
		t.Fatal("identical tokens must match")
	}
	if TokenMatches(token, "forged") {
		t.Fatal("forged token must not match")
	}
	if TokenMatches("", "") || TokenMatches(token, "") || TokenMatches("", token) {
		t.Fatal("empty tokens never match")
	}
}
