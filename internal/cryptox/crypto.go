// Package cryptox seals small secrets (session cookie values) before they are
// written to the local database.
package cryptox

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storefront/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of keys accepted by Encrypt and Decrypt.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidKeyFile = errors.New("invalid key file")

// Encrypt seals plaintext with XChaCha20-Poly1305 under key, binding it to
// the additional data ad. A fresh random nonce is generated for every call
// and returned next to the ciphertext.
func Encrypt(plaintext, ad, key []byte) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aead.NonceSize())
	ciphertext = aead.Seal(nil, nonce, plaintext, ad)

	return ciphertext, nonce, nil
}

// Decrypt opens a ciphertext produced by Encrypt. The same key, nonce and
// additional data must be supplied.
func Decrypt(ciphertext, nonce, ad, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("bad nonce length %d", len(nonce))
	}
	return aead.Open(nil, nonce, ciphertext, ad)
}

// LoadOrCreateKey reads a KeySize-byte key from path. If the file does not
// exist, a random key is generated and written with mode 0600.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKeyFile, path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key: %w", err)
	}

	key = common.GenerateRandByteArray(KeySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}
