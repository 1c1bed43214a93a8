package auth

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestSealer(t *testing.T, secret string) *Sealer {
	t.Helper()
	s, err := NewSealer(secret)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newTestSealer(t, testSecret)

	sealed, err := s.Seal("gho_abcdef123456")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if strings.Contains(sealed, "gho_abcdef123456") {
		t.Fatal("sealed value contains the plaintext")
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got != "gho_abcdef123456" {
		t.Errorf("Open() = %q, want %q", got, "gho_abcdef123456")
	}
}

func TestSealer_FreshNonceEachTime(t *testing.T) {
	s := newTestSealer(t, testSecret)

	a, _ := s.Seal("same-token")
	b, _ := s.Seal("same-token")
	if a == b {
		t.Error("two seals of the same value should differ")
	}
}

func TestSealer_EmptyPassesThrough(t *testing.T) {
	s := newTestSealer(t, testSecret)

	sealed, err := s.Seal("")
	if err != nil || sealed != "" {
		t.Fatalf("Seal(\"\") = %q, %v; want \"\", nil", sealed, err)
	}
	opened, err := s.Open("")
	if err != nil || opened != "" {
		t.Fatalf("Open(\"\") = %q, %v; want \"\", nil", opened, err)
	}
}

func TestSealer_RejectsTampering(t *testing.T) {
	s := newTestSealer(t, testSecret)
	sealed, _ := s.Seal("gho_abcdef123456")

	// Flip a character in the middle: every bit of it is payload.
	flipped := []byte(sealed)
	mid := len(flipped) / 2
	if flipped[mid] == 'A' {
		flipped[mid] = 'B'
	} else {
		flipped[mid] = 'A'
	}

	other := newTestSealer(t, "a-completely-different-secret")
	fromOther, _ := other.Seal("gho_abcdef123456")

	cases := map[string]string{
		"flipped byte":   string(flipped),
		"truncated":      sealed[:10],
		"not base64":     "!!!not base64!!!",
		"foreign secret": fromOther,
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Open(value)
			if !errors.Is(err, ErrUnseal) {
				t.Fatalf("Open() error = %v, want ErrUnseal", err)
			}
		})
	}
}

func TestNewSealer_ShortSecret(t *testing.T) {
	if _, err := NewSealer("short"); err == nil {
		t.Fatal("NewSealer() should reject short secrets")
	}
}
