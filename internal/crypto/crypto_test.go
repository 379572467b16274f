package crypto

import (
	"strings"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := Encrypt("wOq7rA1example0private2key=", "master-pass")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !IsEncrypted(sealed) {
		t.Fatalf("sealed value not marked encrypted: %q", sealed)
	}
	if strings.Contains(sealed, "example") {
		t.Error("plaintext leaked into sealed value")
	}

	plain, err := Decrypt(sealed, "master-pass")
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plain != "wOq7rA1example0private2key=" {
		t.Errorf("roundtrip mismatch: %q", plain)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	sealed, err := Encrypt("secret", "right-key")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong-key"); err == nil {
		t.Error("expected decryption failure with the wrong key")
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	if _, err := Decrypt(Prefix+"not-base64!!!", "key"); err == nil {
		t.Error("expected error for malformed value")
	}
}

func TestIsEncrypted(t *testing.T) {
	if IsEncrypted("plain value") {
		t.Error("plain value reported as encrypted")
	}
	if !IsEncrypted(Prefix + "abc") {
		t.Error("prefixed value not reported as encrypted")
	}
}
