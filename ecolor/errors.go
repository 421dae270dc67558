package ecolor

import "errors"

// failure kinds, check with errors.Is
var (
	// ErrCertificateFormat is returned when a single-line PEM string has no BEGIN/END markers
	ErrCertificateFormat = errors.New("ecolor: certificate missing or malformed")

	// ErrConnect is returned when the broker connection could not be established
	ErrConnect = errors.New("ecolor: connect failed")

	// ErrSubscribe is returned when the device topic subscription fails; the session is torn down
	ErrSubscribe = errors.New("ecolor: subscribe failed")

	// ErrMalformedEnvelope is returned for inbound messages that are not {"msg": "<base64>"}
	ErrMalformedEnvelope = errors.New("ecolor: malformed message envelope")

	// ErrUnrecognized is returned for well-formed frames carrying an opcode we don't handle
	ErrUnrecognized = errors.New("ecolor: unrecognized frame")

	// ErrAuth is returned when login or device listing is refused
	ErrAuth = errors.New("ecolor: authentication failed")

	// ErrNotConnected is returned by Publish before the session is connected
	ErrNotConnected = errors.New("ecolor: session not connected")

	// ErrClosed is returned by Publish and Connect after teardown
	ErrClosed = errors.New("ecolor: session closed")

	// ErrNoSession is returned by the controller when the device has no working session
	ErrNoSession = errors.New("ecolor: no client")
)
