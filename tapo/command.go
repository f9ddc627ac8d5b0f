package tapo

import (
	"context"
	"math"

	"github.com/kostya9/khome-tapo/internal/transport"
	"github.com/kostya9/khome-tapo/internal/wire"
)

const (
	// maxRetries is how many additional attempts a transiently failing
	// command gets after the first one (4 attempts total).
	maxRetries = 3

	// transportFailureCode stands in for a device error code when the device
	// never answered. It lies outside the device code space.
	transportFailureCode = math.MinInt32
)

// retryable reports whether an outcome code may be retried: the device-busy
// rate-limit code or a transport-level failure. Everything else, session
// expiry included, is fatal for the command.
func retryable(code int) bool {
	return code == wire.CodeDeviceBusy || code == transportFailureCode
}

// execute sends one authenticated command over the encrypted channel and
// retries transient failures up to maxRetries additional attempts, reusing
// the session's token and cipher throughout. On success the inner result is
// decoded into out (which may be nil when the result is irrelevant).
func (s *Session) execute(ctx context.Context, method string, params, out any) error {
	for attempt := 0; ; attempt++ {
		code, err := s.attempt(ctx, method, params, out)
		if err != nil {
			return err
		}
		if code == wire.CodeOK {
			return nil
		}
		if !retryable(code) {
			return &CommandError{Code: code}
		}
		// Caller cancellation aborts the retry loop between attempts, never
		// mid-flight.
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt == maxRetries {
			s.logger.Debug().Str("method", method).Int("last_code", code).Msg("retries exhausted")
			return &RetriesExhaustedError{LastCode: code}
		}
		s.logger.Debug().Str("method", method).Int("code", code).Int("attempt", attempt+1).Msg("transient failure, retrying")
	}
}

// attempt performs one encrypt-send-decrypt round-trip and classifies the
// result into a single outcome code: wire.CodeOK on success, the outer or
// inner device error code on rejection, or transportFailureCode when the
// request never completed. Errors are reserved for client-side failures
// (encoding, crypto, protocol violations) that no retry can fix.
func (s *Session) attempt(ctx context.Context, method string, params, out any) (int, error) {
	sealed, err := sealRequest(s.cipher, wire.NewEnvelope(method, params))
	if err != nil {
		return 0, err
	}

	outer, err := s.transport.PostWithToken(ctx, appPath, s.token, wire.NewEnvelope(wire.MethodSecurePassthrough, sealed))
	if err != nil {
		if transport.IsUnreachable(err) {
			return transportFailureCode, nil
		}
		return 0, err
	}
	if !outer.OK() {
		return outer.ErrorCode, nil
	}

	inner, err := openResponse(s.cipher, outer)
	if err != nil {
		return 0, err
	}
	if !inner.OK() {
		return inner.ErrorCode, nil
	}
	if out != nil {
		if err := inner.DecodeResult(out); err != nil {
			return 0, err
		}
	}
	return wire.CodeOK, nil
}
