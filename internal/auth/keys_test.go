package auth

import (
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	if !strings.HasPrefix(key, "cf_") {
		t.Errorf("expected cf_ prefix, got %q", key)
	}
	// 3-char prefix plus 64 hex chars.
	if len(key) != 67 {
		t.Errorf("unexpected key length %d", len(key))
	}

	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if key == other {
		t.Error("two generated keys must differ")
	}
}

func TestHashKey(t *testing.T) {
	h1 := HashKey("cf_abc123")
	h2 := HashKey("cf_abc123")
	if h1 != h2 {
		t.Error("hashing must be deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
	if h1 == HashKey("cf_other") {
		t.Error("different keys must hash differently")
	}
}

func TestHashKey_TrimsWhitespace(t *testing.T) {
	if HashKey("  cf_abc123\n") != HashKey("cf_abc123") {
		t.Error("whitespace must not affect the hash")
	}
}
