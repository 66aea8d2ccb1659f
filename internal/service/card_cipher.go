package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// AESCardCipher implements ports.CardCipher. Card numbers are stored as
// AES-256-GCM ciphertexts; lookups go through a deterministic HMAC-SHA256
// of the plaintext number, so equality queries never touch the ciphertext.
type AESCardCipher struct {
	encKey  []byte // 32-byte AES-256 key
	hmacKey []byte
}

// NewAESCardCipher builds a cipher from two hex-encoded keys. encHexKey
// must decode to 32 bytes; hmacHexKey to at least 32.
func NewAESCardCipher(encHexKey, hmacHexKey string) (*AESCardCipher, error) {
	encKey, err := hex.DecodeString(encHexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(encKey) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(encKey))
	}

	hmacKey, err := hex.DecodeString(hmacHexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding HMAC key: %w", err)
	}
	if len(hmacKey) < 32 {
		return nil, fmt.Errorf("HMAC key must be at least 32 bytes, got %d", len(hmacKey))
	}

	return &AESCardCipher{encKey: encKey, hmacKey: hmacKey}, nil
}

// EncryptNumber encrypts a card number with AES-256-GCM.
// Returns hex-encoded nonce || ciphertext.
func (c *AESCardCipher) EncryptNumber(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// DecryptNumber decrypts a hex-encoded AES-256-GCM ciphertext.
func (c *AESCardCipher) DecryptNumber(ciphertextHex string) (string, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}

	return string(plaintext), nil
}

// LookupHash returns the deterministic hex HMAC-SHA256 of a card number.
func (c *AESCardCipher) LookupHash(plaintext string) string {
	mac := hmac.New(sha256.New, c.hmacKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}
