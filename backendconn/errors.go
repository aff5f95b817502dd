// Package backendconn drives one physical connection to a backend
// database: the handshake, authentication, and command-response state
// machine, wired to the wire, resultset, auth, and registry packages.
package backendconn

import "fmt"

// ProtocolError reports a frame, sequence, or field decode failure. Fatal
// to the owning connection.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("backendconn: protocol error during %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// AuthError reports an ERR packet received while AUTHENTICATING. Fatal to
// the owning connection.
type AuthError struct {
	Code    uint16
	SQLState string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("backendconn: auth failed (%d %s): %s", e.Code, e.SQLState, e.Message)
}

// SqlError reports an ERR packet received while in COMMAND phase, or a
// callback failure further up the stack. Per-request; does not invalidate
// the connection.
type SqlError struct {
	Code     uint16
	SQLState string
	Message  string
}

func (e *SqlError) Error() string {
	return fmt.Sprintf("backendconn: sql error (%d %s): %s", e.Code, e.SQLState, e.Message)
}

// CryptoError reports that the auth hash algorithm could not be computed.
// Fatal; translated to a bootstrap-level error.
type CryptoError struct {
	Err error
}

func (e *CryptoError) Error() string { return fmt.Sprintf("backendconn: crypto error: %v", e.Err) }

func (e *CryptoError) Unwrap() error { return e.Err }
