// Package crypto provides the encryption, hashing and signing primitives for
// the CampusHQ backup subsystem.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the size of the AES-256 key (32 bytes).
	KeySize = 32

	// NonceSize is the size of the AES-GCM nonce (12 bytes standard).
	NonceSize = 12

	// TagSize is the size of the GCM authentication tag.
	TagSize = 16

	// AlgorithmAESGCM is the algorithm id recorded on encrypted artifacts.
	AlgorithmAESGCM = "aes-256-gcm"

	// AlgorithmEd25519 is the algorithm id recorded on signed artifacts.
	AlgorithmEd25519 = "ed25519"
)

var (
	// ErrInvalidKeySize indicates the encryption key is not the correct size.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")
	// ErrInvalidCiphertext indicates the ciphertext is too short or malformed.
	ErrInvalidCiphertext = errors.New("ciphertext too short")
	// ErrDecryptionFailed indicates the decryption operation failed.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrInvalidSigningKey indicates the signing key material is malformed.
	ErrInvalidSigningKey = errors.New("invalid signing key")
)

// Sealed is the result of an authenticated encryption: the ciphertext with
// the GCM tag appended, plus the nonce used. The nonce and tag are recorded
// separately on the owning backup record.
type Sealed struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
}

// Cipher performs AES-256-GCM encryption with an immutable key injected at
// construction time.
type Cipher struct {
	key []byte
}

// NewCipher creates a Cipher. The key must be exactly 32 bytes.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Cipher{key: k}, nil
}

// Encrypt encrypts plaintext and returns the ciphertext together with the
// nonce and authentication tag so they can be recorded as artifact metadata.
func (c *Cipher) Encrypt(plaintext []byte) (*Sealed, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return &Sealed{
		Ciphertext: ciphertext,
		IV:         nonce,
		AuthTag:    ciphertext[len(ciphertext)-TagSize:],
	}, nil
}

// Decrypt decrypts ciphertext produced by Encrypt using the recorded nonce.
func (c *Cipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	if len(ciphertext) < TagSize || len(iv) != NonceSize {
		return nil, ErrInvalidCiphertext
	}

	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// HashHex returns the hex-encoded SHA-256 digest of data. The digest always
// describes exactly the final persisted bytes of an artifact.
func HashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashEqual compares two hex digests without an early-exit timing dependency.
func HashEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Signer produces Ed25519 signatures over content hashes with the platform's
// private signing key.
type Signer struct {
	priv ed25519.PrivateKey
}

// NewSigner creates a Signer from a 32-byte Ed25519 seed.
func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidSigningKey
	}
	return &Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign signs the given content hash and returns the base64-encoded signature.
func (s *Signer) Sign(contentHash string) string {
	sig := ed25519.Sign(s.priv, []byte(contentHash))
	return base64.StdEncoding.EncodeToString(sig)
}

// PublicKey returns the verification key matching this signer.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

// Verifier checks Ed25519 signatures with the platform's public key.
type Verifier struct {
	pub ed25519.PublicKey
}

// NewVerifier creates a Verifier from a raw Ed25519 public key.
func NewVerifier(pub []byte) (*Verifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, ErrInvalidSigningKey
	}
	return &Verifier{pub: ed25519.PublicKey(pub)}, nil
}

// Verify checks a base64-encoded signature over the given content hash.
func (v *Verifier) Verify(contentHash, signature string) bool {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(v.pub, []byte(contentHash), sig)
}

// GenerateMasterKey generates a new random AES-256 key. This is done once
// during initial server setup and stored securely.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}
	return key, nil
}

// GenerateSigningSeed generates a new random Ed25519 seed.
func GenerateSigningSeed() ([]byte, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("generate signing seed: %w", err)
	}
	return seed, nil
}

// GenerateAPIKey generates a new bearer API key. Only its SHA-256 hash is
// ever persisted; the key itself is shown to the caller exactly once.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return "chq_" + base64.RawURLEncoding.EncodeToString(raw), nil
}

// KeyFromBase64 decodes a base64-encoded 32-byte key.
func KeyFromBase64(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return key, nil
}

// KeyToBase64 encodes key material to base64 for configuration storage.
func KeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}
