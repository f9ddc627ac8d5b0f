package tapo

import "fmt"

// HandshakeError reports a device-rejected handshake. The authentication
// flow terminates; no partial session is ever returned.
type HandshakeError struct {
	Code int
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("tapo: handshake rejected (error_code %d)", e.Code)
}

// PassthroughError reports a nonzero error code on the outer
// securePassthrough envelope.
type PassthroughError struct {
	Code int
}

func (e *PassthroughError) Error() string {
	return fmt.Sprintf("tapo: secure passthrough rejected (error_code %d)", e.Code)
}

// LoginError reports a device-rejected login_device request.
type LoginError struct {
	Code int
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("tapo: login rejected (error_code %d)", e.Code)
}

// CommandError reports a fatal device error code for a single command. The
// session itself stays usable; whether to re-authenticate (e.g. on
// wire.CodeSessionExpired) is the caller's decision.
type CommandError struct {
	Code int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("tapo: command rejected (error_code %d)", e.Code)
}

// RetriesExhaustedError reports that a command kept failing transiently
// until the retry bound was used up. LastCode is the code observed on the
// final attempt; transportFailureCode means the device never answered.
type RetriesExhaustedError struct {
	LastCode int
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("tapo: retries exhausted (last error_code %d)", e.LastCode)
}
