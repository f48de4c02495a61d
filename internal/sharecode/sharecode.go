// Package sharecode derives a shareable id from a bank account id.
//
// The mapping is a keyed obfuscation, not encryption: it is deterministic
// (same account id, same output) and invertible by Decode. It only keeps
// raw aggregation-service account ids out of shareable surfaces.
package sharecode

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// KeySize is the required codec key length in bytes.
const KeySize = chacha20.KeySize

var (
	// ErrInvalidKey indicates the codec key has the wrong length.
	ErrInvalidKey = errors.New("share code key must be 32 bytes")
	// ErrInvalidCode indicates a code that cannot be decoded.
	ErrInvalidCode = errors.New("invalid share code")
)

// Codec encodes and decodes shareable ids with a fixed key.
type Codec struct {
	key []byte
}

// New creates a Codec from a 32-byte key.
func New(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Codec{key: k}, nil
}

// keystream XORs data with the ChaCha20 stream for the codec key.
// The nonce is fixed so the mapping stays deterministic; see package doc.
func (c *Codec) keystream(data []byte) ([]byte, error) {
	nonce := make([]byte, chacha20.NonceSize)
	cipher, err := chacha20.NewUnauthenticatedCipher(c.key, nonce)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	out := make([]byte, len(data))
	cipher.XORKeyStream(out, data)
	return out, nil
}

// Encode maps an account id to its shareable form.
func (c *Codec) Encode(accountID string) (string, error) {
	if accountID == "" {
		return "", ErrInvalidCode
	}
	masked, err := c.keystream([]byte(accountID))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(masked), nil
}

// Decode recovers the account id from a shareable id produced by Encode.
func (c *Codec) Decode(code string) (string, error) {
	if code == "" {
		return "", ErrInvalidCode
	}
	masked, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return "", ErrInvalidCode
	}
	plain, err := c.keystream(masked)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
