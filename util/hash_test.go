package util

import (
	"strings"
	"testing"
)

func TestGetHash(t *testing.T) {
	// SHA-256 of "hello world"
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	got, err := GetHash(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("GetHash failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestHashBytesMatchesGetHash(t *testing.T) {
	data := []byte("content-addressed")
	fromReader, err := GetHash(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("GetHash failed: %v", err)
	}
	if got := HashBytes(data); got != fromReader {
		t.Errorf("HashBytes %s != GetHash %s", got, fromReader)
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("state-a"))
	b := Checksum([]byte("state-b"))
	if a == b {
		t.Errorf("expected distinct checksums, got %s twice", a)
	}
	if a != Checksum([]byte("state-a")) {
		t.Error("checksum is not deterministic")
	}
	if len(a) != 32 {
		t.Errorf("expected 128-bit hex checksum (32 chars), got %d: %s", len(a), a)
	}
}
