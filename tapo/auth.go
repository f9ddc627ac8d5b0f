package tapo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kostya9/khome-tapo/internal/crypto"
	"github.com/kostya9/khome-tapo/internal/transport"
	"github.com/kostya9/khome-tapo/internal/wire"
)

// Authenticate runs the full handshake and login flow against one device and
// returns an authenticated Session.
//
// The flow is a straight line: generate a fresh RSA key pair, exchange it
// for the 32-byte AES key material, then log in over the encrypted channel
// to obtain the session token. A failure at any step terminates the flow
// with no partial session; callers retry authentication from scratch.
func (c *Client) Authenticate(ctx context.Context, address, username, password string) (*Session, error) {
	logger := c.logger.With().
		Str("device", address).
		Str("session_id", uuid.NewString()).
		Logger()

	tr := transport.New(deviceBaseURL(address))
	session, err := login(ctx, tr, logger, username, password)
	if err != nil {
		tr.Close()
		return nil, err
	}
	logger.Debug().Msg("session established")
	return session, nil
}

func login(ctx context.Context, tr *transport.Client, logger zerolog.Logger, username, password string) (*Session, error) {
	// Handshake: send our public key, receive the RSA-encrypted session key
	// material. A fresh key pair per attempt, never reused.
	priv, der, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	handshake := wire.HandshakeParams{Key: crypto.EncodePublicKeyPEM(der)}
	resp, err := tr.Post(ctx, appPath, wire.NewEnvelope(wire.MethodHandshake, handshake))
	if err != nil {
		return nil, fmt.Errorf("handshake request: %w", err)
	}
	if !resp.OK() {
		return nil, &HandshakeError{Code: resp.ErrorCode}
	}
	var handshakeResult wire.HandshakeResult
	if err := resp.DecodeResult(&handshakeResult); err != nil {
		return nil, err
	}

	material, err := crypto.DecryptHandshakeKey(priv, handshakeResult.Key)
	if err != nil {
		return nil, err
	}
	sessionCipher, err := crypto.NewSessionCipher(material)
	if err != nil {
		return nil, err
	}
	logger.Debug().Msg("handshake complete, session key derived")

	// Login rides the encrypted channel but carries no token yet.
	loginEnvelope := wire.NewEnvelope(wire.MethodLoginDevice, wire.LoginParams{
		Username: crypto.HashUsername(username),
		Password: crypto.EncodePassword(password),
	})
	sealed, err := sealRequest(sessionCipher, loginEnvelope)
	if err != nil {
		return nil, err
	}
	resp, err = tr.Post(ctx, appPath, wire.NewEnvelope(wire.MethodSecurePassthrough, sealed))
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	if !resp.OK() {
		return nil, &PassthroughError{Code: resp.ErrorCode}
	}
	inner, err := openResponse(sessionCipher, resp)
	if err != nil {
		return nil, err
	}
	if !inner.OK() {
		return nil, &LoginError{Code: inner.ErrorCode}
	}
	var loginResult wire.LoginResult
	if err := inner.DecodeResult(&loginResult); err != nil {
		return nil, err
	}
	logger.Debug().Msg("login accepted")

	return &Session{
		cipher:    sessionCipher,
		token:     loginResult.Token,
		transport: tr,
		logger:    logger,
	}, nil
}
