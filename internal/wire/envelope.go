// Package wire defines the plaintext JSON envelope format spoken by
// Tapo-family smart devices and the codec helpers used to encode and decode
// it.
//
// Every request is wrapped in an Envelope and every reply in a Response,
// regardless of whether the payload travels in the clear (handshake) or
// inside the encrypted securePassthrough channel.
package wire

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"
)

// Envelope is the outbound request wrapper.
type Envelope struct {
	// Method is the device RPC method name (e.g. "handshake").
	Method string `json:"method"`
	// Params is the method-specific payload. A nil value is omitted from the
	// encoded form entirely.
	Params any `json:"params,omitempty"`
	// RequestTimeMils is the wall-clock send time in milliseconds since the
	// Unix epoch. Devices record it but never use it for ordering or expiry.
	RequestTimeMils int64 `json:"request_time_mils"`
}

// NewEnvelope wraps params in an Envelope stamped with the current time.
func NewEnvelope(method string, params any) *Envelope {
	return &Envelope{
		Method:          method,
		Params:          params,
		RequestTimeMils: time.Now().UnixMilli(),
	}
}

// Response is the inbound reply wrapper.
//
// ErrorCode is zero if and only if Result holds a semantically valid payload;
// on any nonzero code Result must not be inspected.
type Response struct {
	// ErrorCode is the device-reported status code (see codes.go).
	ErrorCode int `json:"error_code"`
	// Result is the raw method-specific payload. It is kept undecoded so the
	// caller only pays for (and trusts) it after checking ErrorCode.
	Result json.RawMessage `json:"result,omitempty"`
}

// OK reports whether the device accepted the request.
func (r *Response) OK() bool {
	return r.ErrorCode == CodeOK
}

// DecodeResult decodes the result payload into v. It refuses to decode when
// the response carries a nonzero error code.
func (r *Response) DecodeResult(v any) error {
	if !r.OK() {
		return &DecodeError{Err: errors.New("result is not valid on a failed response")}
	}
	return Unmarshal(r.Result, v)
}

// DecodeError reports malformed or type-mismatched wire data.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "wire: decode: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Marshal encodes v as canonical wire JSON.
func Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return data, nil
}

// Unmarshal decodes wire JSON into v, which must be a non-nil pointer.
//
// Decoding is all-or-nothing: the target is only written after the whole
// payload parsed cleanly, so a failed decode never leaves v partially
// populated.
func Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DecodeError{Err: errors.New("target must be a non-nil pointer")}
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return &DecodeError{Err: err}
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}
