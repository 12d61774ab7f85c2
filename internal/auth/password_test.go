package auth

import "testing"

func TestHashSecretDeterministic(t *testing.T) {
	a := HashSecret("pw1")
	b := HashSecret("pw1")
	if a != b {
		t.Fatal("same secret must hash to the same digest")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if HashSecret("pw2") == a {
		t.Fatal("different secrets must not collide")
	}
}

func TestMatches(t *testing.T) {
	h := HashSecret("correct horse")
	if !Matches(h, "correct horse") {
		t.Fatal("expected match")
	}
	if Matches(h, "wrong") {
		t.Fatal("expected mismatch")
	}
	if Matches("", "anything") {
		t.Fatal("empty stored hash must never match")
	}
}
