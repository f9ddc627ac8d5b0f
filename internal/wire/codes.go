package wire

// Device error codes. The set below is the subset this client reacts to;
// any other nonzero code is treated as an opaque fatal failure.
const (
	// CodeOK means the request was accepted and the result is valid.
	CodeOK = 0
	// CodeMalformedRequest means the device could not parse the request JSON.
	CodeMalformedRequest = -1003
	// CodeInvalidPublicKey means the handshake public key was rejected.
	CodeInvalidPublicKey = -1010
	// CodeDeviceBusy is a transient rate-limit-like condition. It is the only
	// device code eligible for automatic retry.
	CodeDeviceBusy = -1301
	// CodeInvalidCredentials means login_device was rejected.
	CodeInvalidCredentials = -1501
	// CodeSessionExpired means the session token is no longer valid. It is
	// deliberately not retried; re-authentication is the caller's call.
	CodeSessionExpired = 9999
)
