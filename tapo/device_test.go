package tapo

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kostya9/khome-tapo/internal/crypto"
	"github.com/kostya9/khome-tapo/internal/wire"
)

// fakeDevice simulates one smart device behind httptest: it performs the
// real RSA key exchange, AES-decrypts passthrough requests, and serves
// login_device / set_device_info / get_device_info. Failure knobs let tests
// script rejections, busy responses, and dropped connections.
type fakeDevice struct {
	t   *testing.T
	srv *httptest.Server

	username string
	password string
	token    string

	mu     sync.Mutex
	cipher *crypto.SessionCipher

	// Failure knobs, guarded by mu.
	handshakeCode int // nonzero: reject handshake with this outer code
	outerCode     int // nonzero: reject securePassthrough with this outer code
	busyRemaining int // answer this many commands with CodeDeviceBusy
	dropRemaining int // drop the connection for this many command requests
	failCode      int // nonzero: answer commands with this inner code
	deviceInfo    wire.DeviceInfo

	// Observations, guarded by mu.
	clientKeys        []string // PEM public keys seen at handshake
	tokensSeen        []string
	commandAttempts   int    // token-bearing HTTP requests, dropped ones included
	commandRequests   int    // decrypted command envelopes
	lastCommandMethod string
	lastCommandParams string
}

// configure adjusts failure knobs under the device lock.
func (d *fakeDevice) configure(fn func(*fakeDevice)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

// deviceStats is a consistent snapshot of everything the device observed.
type deviceStats struct {
	clientKeys      []string
	tokensSeen      []string
	commandAttempts int
	commandRequests int
	lastMethod      string
	lastParams      string
}

func (d *fakeDevice) stats() deviceStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return deviceStats{
		clientKeys:      append([]string(nil), d.clientKeys...),
		tokensSeen:      append([]string(nil), d.tokensSeen...),
		commandAttempts: d.commandAttempts,
		commandRequests: d.commandRequests,
		lastMethod:      d.lastCommandMethod,
		lastParams:      d.lastCommandParams,
	}
}

func newFakeDevice(t *testing.T) *fakeDevice {
	d := &fakeDevice{
		t:        t,
		username: "admin",
		password: "secret",
		token:    "tok123",
	}
	d.srv = httptest.NewServer(http.HandlerFunc(d.handle))
	t.Cleanup(d.srv.Close)
	return d
}

func (d *fakeDevice) address() string {
	return d.srv.URL
}

// session authenticates against the fake device and registers cleanup.
func (d *fakeDevice) session(t *testing.T) *Session {
	t.Helper()
	session, err := New().Authenticate(t.Context(), d.address(), d.username, d.password)
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return session
}

func (d *fakeDevice) handle(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	require.Equal(d.t, http.MethodPost, r.Method)
	require.Equal(d.t, "/app", r.URL.Path)

	if token := r.URL.Query().Get("token"); token != "" {
		d.tokensSeen = append(d.tokensSeen, token)
		d.commandAttempts++
		if d.dropRemaining > 0 {
			d.dropRemaining--
			hj, ok := w.(http.Hijacker)
			require.True(d.t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(d.t, err)
			_ = conn.Close()
			return
		}
	}

	var env struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(d.t, json.NewDecoder(r.Body).Decode(&env))

	switch env.Method {
	case wire.MethodHandshake:
		d.handleHandshake(w, env.Params)
	case wire.MethodSecurePassthrough:
		d.handlePassthrough(w, env.Params)
	default:
		d.writeOuter(w, wire.CodeMalformedRequest, nil)
	}
}

func (d *fakeDevice) handleHandshake(w http.ResponseWriter, params json.RawMessage) {
	var handshake wire.HandshakeParams
	require.NoError(d.t, json.Unmarshal(params, &handshake))
	d.clientKeys = append(d.clientKeys, handshake.Key)

	if d.handshakeCode != 0 {
		d.writeOuter(w, d.handshakeCode, nil)
		return
	}

	block, _ := pem.Decode([]byte(handshake.Key))
	require.NotNil(d.t, block)
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(d.t, err)
	pub, ok := parsed.(*rsa.PublicKey)
	require.True(d.t, ok)

	material := make([]byte, 32)
	_, err = rand.Read(material)
	require.NoError(d.t, err)
	d.cipher, err = crypto.NewSessionCipher(material)
	require.NoError(d.t, err)

	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, pub, material)
	require.NoError(d.t, err)
	d.writeOuter(w, wire.CodeOK, wire.HandshakeResult{Key: base64.StdEncoding.EncodeToString(encrypted)})
}

func (d *fakeDevice) handlePassthrough(w http.ResponseWriter, params json.RawMessage) {
	if d.outerCode != 0 {
		d.writeOuter(w, d.outerCode, nil)
		return
	}
	require.NotNil(d.t, d.cipher, "passthrough before handshake")

	var passthrough wire.PassthroughParams
	require.NoError(d.t, json.Unmarshal(params, &passthrough))
	ciphertext, err := base64.StdEncoding.DecodeString(passthrough.Request)
	require.NoError(d.t, err)
	plaintext, err := d.cipher.Decrypt(ciphertext)
	require.NoError(d.t, err)

	var inner struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(d.t, json.Unmarshal(plaintext, &inner))

	code, result := d.dispatch(inner.Method, inner.Params)
	innerResp := wire.Response{ErrorCode: code}
	if result != nil {
		innerResp.Result, err = json.Marshal(result)
		require.NoError(d.t, err)
	}
	innerJSON, err := json.Marshal(innerResp)
	require.NoError(d.t, err)
	sealed, err := d.cipher.Encrypt(innerJSON)
	require.NoError(d.t, err)
	d.writeOuter(w, wire.CodeOK, wire.PassthroughResult{Response: base64.StdEncoding.EncodeToString(sealed)})
}

func (d *fakeDevice) dispatch(method string, params json.RawMessage) (int, any) {
	switch method {
	case wire.MethodLoginDevice:
		var login wire.LoginParams
		require.NoError(d.t, json.Unmarshal(params, &login))
		if login.Username != crypto.HashUsername(d.username) || login.Password != crypto.EncodePassword(d.password) {
			return wire.CodeInvalidCredentials, nil
		}
		return wire.CodeOK, wire.LoginResult{Token: d.token}

	case wire.MethodSetDeviceInfo, wire.MethodGetDeviceInfo:
		d.commandRequests++
		d.lastCommandMethod = method
		d.lastCommandParams = string(params)
		if d.busyRemaining > 0 {
			d.busyRemaining--
			return wire.CodeDeviceBusy, nil
		}
		if d.failCode != 0 {
			return d.failCode, nil
		}
		if method == wire.MethodGetDeviceInfo {
			return wire.CodeOK, d.deviceInfo
		}
		return wire.CodeOK, struct{}{}

	default:
		return wire.CodeMalformedRequest, nil
	}
}

func (d *fakeDevice) writeOuter(w http.ResponseWriter, code int, result any) {
	resp := wire.Response{ErrorCode: code}
	if result != nil {
		data, err := json.Marshal(result)
		require.NoError(d.t, err)
		resp.Result = data
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(d.t, json.NewEncoder(w).Encode(resp))
}
