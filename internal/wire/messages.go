package wire

// Device RPC method names.
const (
	// MethodHandshake starts the RSA key exchange. Sent in the clear.
	MethodHandshake = "handshake"
	// MethodSecurePassthrough carries an AES-encrypted inner envelope.
	MethodSecurePassthrough = "securePassthrough"
	// MethodLoginDevice authenticates a user. Sent inside securePassthrough.
	MethodLoginDevice = "login_device"
	// MethodSetDeviceInfo applies a partial device-state update.
	MethodSetDeviceInfo = "set_device_info"
	// MethodGetDeviceInfo reads the current device state.
	MethodGetDeviceInfo = "get_device_info"
)

// HandshakeParams is the handshake request payload.
type HandshakeParams struct {
	// Key is the client RSA public key in PEM armor.
	Key string `json:"key"`
}

// HandshakeResult is the handshake response payload.
type HandshakeResult struct {
	// Key is the 32-byte AES key+IV material, RSA-encrypted with the client
	// public key and base64-encoded.
	Key string `json:"key"`
}

// PassthroughParams is the securePassthrough request payload.
type PassthroughParams struct {
	// Request is the inner envelope: JSON, AES-CBC encrypted, base64-encoded.
	Request string `json:"request"`
}

// PassthroughResult is the securePassthrough response payload.
type PassthroughResult struct {
	// Response is the inner Response: JSON, AES-CBC encrypted, base64-encoded.
	Response string `json:"response"`
}

// LoginParams is the login_device request payload.
type LoginParams struct {
	// Username is base64(lowercase-hex(SHA1(username))).
	Username string `json:"username"`
	// Password is base64(password).
	Password string `json:"password"`
}

// LoginResult is the login_device response payload.
type LoginResult struct {
	// Token authenticates every request sent after login.
	Token string `json:"token"`
}

// DeviceInfoPatch is the set_device_info request payload. Absent fields are
// omitted from the encoded form entirely, never sent as null.
type DeviceInfoPatch struct {
	// DeviceOn switches the device output on or off.
	DeviceOn *bool `json:"device_on,omitempty"`
	// Brightness is the target brightness (0-100).
	Brightness *int `json:"brightness,omitempty"`
	// Hue is the target hue (0-360).
	Hue *int `json:"hue,omitempty"`
	// Saturation is the target saturation (0-100).
	Saturation *int `json:"saturation,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p DeviceInfoPatch) Empty() bool {
	return p.DeviceOn == nil && p.Brightness == nil && p.Hue == nil && p.Saturation == nil
}

// DeviceInfo is the get_device_info response payload, reduced to the state
// this client acts on.
type DeviceInfo struct {
	// DeviceOn reports whether the device output is on.
	DeviceOn bool `json:"device_on"`
	// Brightness is the current brightness (0-100).
	Brightness int `json:"brightness"`
	// Hue is the current hue (0-360).
	Hue int `json:"hue"`
	// Saturation is the current saturation (0-100).
	Saturation int `json:"saturation"`
}
