package tapo

import (
	"encoding/base64"
	"fmt"

	"github.com/kostya9/khome-tapo/internal/crypto"
	"github.com/kostya9/khome-tapo/internal/wire"
)

// appPath is the device RPC endpoint for both the handshake and every
// securePassthrough request.
const appPath = "/app"

// sealRequest encodes an inner envelope for the securePassthrough channel:
// JSON, AES-CBC encrypt, base64.
func sealRequest(cipher *crypto.SessionCipher, inner *wire.Envelope) (wire.PassthroughParams, error) {
	plaintext, err := wire.Marshal(inner)
	if err != nil {
		return wire.PassthroughParams{}, err
	}
	ciphertext, err := cipher.Encrypt(plaintext)
	if err != nil {
		return wire.PassthroughParams{}, fmt.Errorf("seal request: %w", err)
	}
	return wire.PassthroughParams{Request: base64.StdEncoding.EncodeToString(ciphertext)}, nil
}

// openResponse is the exact inverse of sealRequest on the reply side:
// base64-decode the outer result, AES-CBC decrypt, JSON-parse the inner
// Response. The outer envelope must already have been checked for success.
func openResponse(cipher *crypto.SessionCipher, outer *wire.Response) (*wire.Response, error) {
	var passthrough wire.PassthroughResult
	if err := outer.DecodeResult(&passthrough); err != nil {
		return nil, err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(passthrough.Response)
	if err != nil {
		return nil, &wire.DecodeError{Err: err}
	}
	plaintext, err := cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("open response: %w", err)
	}
	var inner wire.Response
	if err := wire.Unmarshal(plaintext, &inner); err != nil {
		return nil, err
	}
	return &inner, nil
}
