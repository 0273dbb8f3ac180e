// Package vault seals and unseals tenant credentials with a deployment
// master key. Sealed envelopes are safe to store in the database; the
// master key itself never is.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/tienda/backend/internal/domain/shared"
)

const (
	saltLength  = 16
	nonceLength = 12
	tagLength   = 16
	keyLength   = 32

	// scrypt cost parameters
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	// MinMasterKeyLength is the minimum accepted master key size.
	MinMasterKeyLength = 32

	envelopeSegments = 4
)

// ErrDecryptionFailed covers every unseal failure: wrong key, tampered
// envelope, malformed envelope. Callers get no hint which it was.
var ErrDecryptionFailed = shared.NewDomainError("DECRYPTION_FAILED", "credential could not be decrypted")

// Vault performs authenticated encryption of credential values.
// A Vault is safe for concurrent use; every call derives its own key
// from a fresh salt, so no mutable state is shared between calls.
type Vault struct {
	masterKey []byte
}

// New creates a Vault from the deployment master key. A missing or
// short key is a configuration fault and refuses to construct.
func New(masterKey string) (*Vault, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("vault: master key is not configured")
	}
	if len(masterKey) < MinMasterKeyLength {
		return nil, fmt.Errorf("vault: master key must be at least %d bytes, got %d", MinMasterKeyLength, len(masterKey))
	}
	return &Vault{masterKey: []byte(masterKey)}, nil
}

// Seal encrypts plaintext into a printable envelope of four dot
// separated base64 segments: salt, nonce, auth tag, ciphertext.
// Sealing the same plaintext twice yields different envelopes.
func (v *Vault) Seal(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("vault: generating salt: %w", err)
	}

	gcm, err := v.cipherFor(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: generating nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	// gcm.Seal appends the tag to the ciphertext; the envelope carries
	// it as its own segment
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	return strings.Join([]string{
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(nonce),
		base64.RawStdEncoding.EncodeToString(tag),
		base64.RawStdEncoding.EncodeToString(ciphertext),
	}, "."), nil
}

// Unseal decrypts an envelope produced by Seal. Any alteration of any
// segment makes it fail with ErrDecryptionFailed.
func (v *Vault) Unseal(envelope string) (string, error) {
	segments := strings.Split(envelope, ".")
	if len(segments) != envelopeSegments {
		return "", ErrDecryptionFailed
	}

	decoded := make([][]byte, envelopeSegments)
	for i, seg := range segments {
		raw, err := base64.RawStdEncoding.DecodeString(seg)
		if err != nil {
			return "", ErrDecryptionFailed
		}
		decoded[i] = raw
	}

	salt, nonce, tag, ciphertext := decoded[0], decoded[1], decoded[2], decoded[3]
	if len(salt) != saltLength || len(nonce) != nonceLength || len(tag) != tagLength {
		return "", ErrDecryptionFailed
	}

	gcm, err := v.cipherFor(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// cipherFor derives a per-envelope AES key from the master key and salt
func (v *Vault) cipherFor(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(v.masterKey, salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("vault: deriving key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: creating cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: creating gcm: %w", err)
	}

	return gcm, nil
}
