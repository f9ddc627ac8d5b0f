// Package crypto implements the cryptographic side of the device protocol:
// the RSA handshake key exchange, the AES session cipher derived from it,
// and the credential encoding used by login.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// ErrCrypto is wrapped by every failure in this package, so callers can
// classify any of them with errors.Is.
var ErrCrypto = errors.New("crypto failure")

// keyMaterialLen is the exact size of the handshake key material: a 16-byte
// AES-128 key followed by a 16-byte IV.
const keyMaterialLen = 32

// SessionCipher holds the AES transforms negotiated for one device session.
//
// Encrypt and Decrypt are stateless single-shot transforms: each call
// processes one complete buffer with the same fixed key/IV pair. Reusing the
// IV across messages is a property of the device protocol that must be
// reproduced exactly for interoperability, not an optimization. Both methods
// are safe for concurrent use.
type SessionCipher struct {
	block cipher.Block
	iv    []byte
}

// NewSessionCipher derives the session cipher from handshake key material.
// The material must be exactly 32 bytes: bytes [0,16) are the AES-128 key
// and bytes [16,32) the CBC initialization vector.
func NewSessionCipher(material []byte) (*SessionCipher, error) {
	if len(material) != keyMaterialLen {
		return nil, fmt.Errorf("%w: key material must be %d bytes, got %d", ErrCrypto, keyMaterialLen, len(material))
	}
	block, err := aes.NewCipher(material[:16])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, material[16:])
	return &SessionCipher{block: block, iv: iv}, nil
}

// Encrypt encrypts one complete plaintext buffer with AES-CBC and PKCS#7
// padding. Empty input is valid and produces a single padding block.
func (c *SessionCipher) Encrypt(plaintext []byte) ([]byte, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt is the exact inverse of Encrypt.
func (c *SessionCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of the block size", ErrCrypto, len(ciphertext))
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(padded, ciphertext)
	return pkcs7Unpad(padded, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrCrypto)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("%w: invalid padding", ErrCrypto)
		}
	}
	return data[:len(data)-padding], nil
}
