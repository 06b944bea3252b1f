// Package middleware provides composable wrappers for the configuration
// store, added between the workspace and any backend.
package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/ports"
)

// envelopePrefix marks a stored value as an encrypted envelope. A layout
// configuration can describe hardware projects under NDA, so at-rest
// encryption is offered for shared backends like Redis.
const envelopePrefix = "$ERGOWEB-ENC$"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ConfigStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts the
// configuration source at rest using AES-GCM.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ConfigStore) ports.ConfigStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, key string, cfg domain.Configuration) error {
	ciphertext, err := encrypt([]byte(cfg.Raw), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt configuration: %w", err)
	}

	// The envelope hides the configuration content; the backend only ever
	// sees an opaque blob.
	envelope := domain.NewConfiguration(envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext))
	return m.next.Save(ctx, key, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, key string) (domain.Configuration, error) {
	envelope, err := m.next.Load(ctx, key)
	if err != nil {
		return domain.Configuration{}, err
	}

	// Once encryption is configured, a plain value is treated as an error.
	// Fail secure instead of silently passing unencrypted data through.
	if !strings.HasPrefix(envelope.Raw, envelopePrefix) {
		return domain.Configuration{}, errors.New("stored configuration is missing the encryption envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(envelope.Raw, envelopePrefix))
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("failed to decrypt configuration: %w", err)
	}

	return domain.NewConfiguration(string(plainText)), nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
