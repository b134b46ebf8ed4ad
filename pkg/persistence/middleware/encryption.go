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

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/ports"
)

// envelopeKey names the single node and state key holding the ciphertext.
const envelopeKey = "__encrypted__"

// ErrNotEncrypted is returned when a stored document has no envelope.
var ErrNotEncrypted = errors.New("graph is missing encrypted data envelope")

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
	next   ports.GraphStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts whole graph
// documents using AES-GCM. The stored envelope keeps the graph name and
// version readable; nodes, ports and description are sealed.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, graphID string, doc *codec.GraphDocument) error {
	plainText, err := codec.Marshal(doc, codec.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt graph: %w", err)
	}

	envelope := &codec.GraphDocument{
		Version: doc.Version,
		Name:    doc.Name,
		Nodes: []codec.NodeDocument{{
			ID:    envelopeKey,
			Type:  envelopeKey,
			State: map[string]any{envelopeKey: base64.StdEncoding.EncodeToString(ciphertext)},
		}},
	}
	return m.next.Save(ctx, graphID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	envelope, err := m.next.Load(ctx, graphID)
	if err != nil {
		return nil, err
	}

	// Plain documents are refused rather than passed through.
	if len(envelope.Nodes) != 1 || envelope.Nodes[0].ID != envelopeKey {
		return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, graphID)
	}
	encoded, ok := envelope.Nodes[0].State[envelopeKey].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotEncrypted, graphID)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt graph %s: %w", graphID, err)
	}

	doc, err := codec.Unmarshal(plainText, codec.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted graph: %w", err)
	}
	return doc, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, graphID string) error {
	return m.next.Delete(ctx, graphID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
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
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
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
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
