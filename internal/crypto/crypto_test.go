package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey() error = %v", err)
	}
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
	return c
}

func TestNewCipher_InvalidKeySize(t *testing.T) {
	if _, err := NewCipher([]byte("short")); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c := testCipher(t)
	plaintext := []byte("tenant snapshot contents, possibly empty tables included")

	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if len(sealed.IV) != NonceSize {
		t.Errorf("expected %d-byte IV, got %d", NonceSize, len(sealed.IV))
	}
	if len(sealed.AuthTag) != TagSize {
		t.Errorf("expected %d-byte tag, got %d", TagSize, len(sealed.AuthTag))
	}

	decrypted, err := c.Decrypt(sealed.Ciphertext, sealed.IV)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("expected decrypted bytes to equal the original plaintext")
	}
}

func TestCipher_RoundTrip_Empty(t *testing.T) {
	c := testCipher(t)

	sealed, err := c.Encrypt(nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	decrypted, err := c.Decrypt(sealed.Ciphertext, sealed.IV)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(decrypted))
	}
}

func TestCipher_TamperDetection(t *testing.T) {
	c := testCipher(t)
	sealed, err := c.Encrypt([]byte("integrity matters"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	sealed.Ciphertext[0] ^= 0x01
	if _, err := c.Decrypt(sealed.Ciphertext, sealed.IV); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed on tampered ciphertext, got %v", err)
	}
}

func TestHashHex_Deterministic(t *testing.T) {
	data := []byte("same bytes, same digest")
	if HashHex(data) != HashHex(data) {
		t.Error("expected identical digests for identical input")
	}
	if HashHex(data) == HashHex([]byte("different")) {
		t.Error("expected different digests for different input")
	}
	if len(HashHex(data)) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashHex(data)))
	}
}

func TestHashEqual(t *testing.T) {
	h := HashHex([]byte("x"))
	if !HashEqual(h, h) {
		t.Error("expected equal hashes to compare equal")
	}
	if HashEqual(h, HashHex([]byte("y"))) {
		t.Error("expected different hashes to compare unequal")
	}
	if HashEqual(h, h[:32]) {
		t.Error("expected different lengths to compare unequal")
	}
}

func TestSignAndVerify(t *testing.T) {
	seed, err := GenerateSigningSeed()
	if err != nil {
		t.Fatalf("GenerateSigningSeed() error = %v", err)
	}
	signer, err := NewSigner(seed)
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	verifier, err := NewVerifier(signer.PublicKey())
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	hash := HashHex([]byte("artifact"))
	sig := signer.Sign(hash)

	if !verifier.Verify(hash, sig) {
		t.Error("expected signature to verify")
	}
	if verifier.Verify(HashHex([]byte("other")), sig) {
		t.Error("expected signature over a different hash to fail")
	}
	if verifier.Verify(hash, "not base64!!") {
		t.Error("expected malformed signature to fail")
	}
}

func TestKeyBase64RoundTrip(t *testing.T) {
	key, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey() error = %v", err)
	}
	decoded, err := KeyFromBase64(KeyToBase64(key))
	if err != nil {
		t.Fatalf("KeyFromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, key) {
		t.Error("expected key to survive base64 round trip")
	}
	if _, err := KeyFromBase64("AAAA"); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("expected ErrInvalidKeySize for short key, got %v", err)
	}
}
