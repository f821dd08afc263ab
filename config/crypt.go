package config

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrDecrypt is returned for malformed or tampered messages
var ErrDecrypt = errors.New("decryption error")

// Decrypt decrypts small messages sealed by Encrypt
func Decrypt(message, secret []byte) ([]byte, error) {
	if len(message) < nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	var nonce [nonceSize]byte
	key := sha256.Sum256(secret)
	copy(nonce[:], message[:nonceSize])
	decrypted, ok := secretbox.Open(nil, message[nonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrDecrypt
	}
	return decrypted, nil
}

// Encrypt encrypts small messages with golang.org/x/crypto/nacl/secretbox,
// the random nonce is prepended to the output
func Encrypt(message, secret []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	key := sha256.Sum256(secret)
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], message, &nonce, &key), nil
}
