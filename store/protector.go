package store

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Protector is the opaque protect/unprotect boundary. The purpose string is
// bound into key derivation so ciphertext from one use case cannot be fed to
// another.
type Protector interface {
	Protect(purpose string, plaintext []byte) ([]byte, error)
	Unprotect(purpose string, ciphertext []byte) ([]byte, error)
}

// AEADProtector derives a purpose-bound key from a master secret with
// HKDF-SHA256 and seals with XChaCha20-Poly1305, nonce prefixed to the box.
type AEADProtector struct {
	secret []byte
}

func NewAEADProtector(secret []byte) *AEADProtector {
	return &AEADProtector{secret: secret}
}

func (p *AEADProtector) aead(purpose string) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, p.secret, nil, []byte(purpose)), key); err != nil {
		return nil, errors.WithMessage(err, "failed to derive purpose-bound key")
	}
	return chacha20poly1305.NewX(key)
}

func (p *AEADProtector) Protect(purpose string, plaintext []byte) ([]byte, error) {
	aead, err := p.aead(purpose)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (p *AEADProtector) Unprotect(purpose string, ciphertext []byte) ([]byte, error) {
	aead, err := p.aead(purpose)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, errors.WithMessage(ErrAuthentication, "ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.WithMessage(ErrAuthentication, err.Error())
	}
	return plaintext, nil
}
