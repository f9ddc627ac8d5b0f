package tapo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kostya9/khome-tapo/internal/crypto"
	"github.com/kostya9/khome-tapo/internal/transport"
	"github.com/kostya9/khome-tapo/internal/wire"
)

// Session is the immutable bundle of negotiated state authenticating all
// commands to one device: the AES session cipher, the login token, and the
// transport bound to the device address.
//
// A Session is safe for concurrent use; the cipher transforms are stateless
// and nothing is mutated after creation. The device itself may still
// serialize or reject overlapping commands, which shows up as an ordinary
// device error code, never as a client-side race.
type Session struct {
	cipher    *crypto.SessionCipher
	token     string
	transport *transport.Client
	logger    zerolog.Logger
}

// Close releases the connections held for the device. The Session must not
// be used afterwards.
func (s *Session) Close() {
	s.transport.Close()
}

// ColorState is a partial color update. Nil fields are left untouched on
// the device and omitted from the wire payload entirely.
type ColorState struct {
	Brightness *int
	Hue        *int
	Saturation *int
}

// SetColor applies a partial color update, retrying transient failures.
func (s *Session) SetColor(ctx context.Context, color ColorState) error {
	return s.SetDeviceInfo(ctx, wire.DeviceInfoPatch{
		Brightness: color.Brightness,
		Hue:        color.Hue,
		Saturation: color.Saturation,
	})
}

// SetDeviceInfo applies a partial device-state update, retrying transient
// failures.
func (s *Session) SetDeviceInfo(ctx context.Context, patch wire.DeviceInfoPatch) error {
	return s.execute(ctx, wire.MethodSetDeviceInfo, patch, nil)
}

// TurnOn switches the device output on.
func (s *Session) TurnOn(ctx context.Context) error {
	on := true
	return s.SetDeviceInfo(ctx, wire.DeviceInfoPatch{DeviceOn: &on})
}

// TurnOff switches the device output off.
func (s *Session) TurnOff(ctx context.Context) error {
	off := false
	return s.SetDeviceInfo(ctx, wire.DeviceInfoPatch{DeviceOn: &off})
}

// GetDeviceInfo reads the current device state.
func (s *Session) GetDeviceInfo(ctx context.Context) (*wire.DeviceInfo, error) {
	var info wire.DeviceInfo
	if err := s.execute(ctx, wire.MethodGetDeviceInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
