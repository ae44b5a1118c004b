package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const saltSize = 16

// Argon2id parameters for deriving the file key from the passphrase
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Sealer encrypts credential files at rest with XChaCha20-Poly1305
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from passphrase and salt
func NewSealer(passphrase string, salt []byte) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	if len(salt) < saltSize {
		return nil, errors.New("salt too short")
	}
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	return &Sealer{aead: aead}, nil
}

// NewSealerForDir loads the salt kept in dir, creating it on first use
func NewSealerForDir(dir, passphrase string) (*Sealer, error) {
	salt, err := loadOrCreateSalt(filepath.Join(dir, ".salt"))
	if err != nil {
		return nil, err
	}
	return NewSealer(passphrase, salt)
}

// Seal encrypts plaintext, prefixing the random nonce
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if len(data) < s.aead.NonceSize() {
		return nil, errors.New("sealed data too short")
	}
	nonce, ciphertext := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt")
	}
	return plaintext, nil
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil && len(salt) >= saltSize {
		return salt, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read salt %s", path)
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create data folder")
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, errors.Wrapf(err, "failed to write salt %s", path)
	}
	return salt, nil
}
