package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// handshakeKeyBits is the RSA key size used for the handshake exchange. The
// device protocol fixes it at 1024; the key only ever protects one 32-byte
// session secret.
const handshakeKeyBits = 1024

// GenerateKeyPair produces a fresh RSA key pair for one authentication
// attempt and returns the private key together with the PKIX DER encoding of
// its public half. Pairs are never reused across devices or attempts.
func GenerateKeyPair() (*rsa.PrivateKey, []byte, error) {
	priv, err := rsa.GenerateKey(rand.Reader, handshakeKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate rsa key: %v", ErrCrypto, err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: marshal public key: %v", ErrCrypto, err)
	}
	return priv, der, nil
}

// EncodePublicKeyPEM wraps a DER public key in PEM armor. The exact textual
// form, trailing newline included, is part of the wire contract: the device
// feeds it straight into its PEM parser during the handshake.
func EncodePublicKeyPEM(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// DecryptHandshakeKey recovers the session key material the device returned
// during the handshake: base64-decode, then RSA PKCS#1 v1.5 decrypt with the
// client private key.
func DecryptHandshakeKey(priv *rsa.PrivateKey, encoded string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: handshake key is not valid base64: %v", ErrCrypto, err)
	}
	material, err := rsa.DecryptPKCS1v15(rand.Reader, priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: rsa decrypt handshake key: %v", ErrCrypto, err)
	}
	return material, nil
}
