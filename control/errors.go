package control

import "fmt"

// CredentialError reports bad, missing, or mismatched local key material.
// It is always returned before any network I/O takes place.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return fmt.Sprintf("credentials: %s", e.Err) }
func (e *CredentialError) Unwrap() error { return e.Err }

// AddressError reports an unparseable or ambiguous control endpoint.
type AddressError struct {
	Input string
	Err   error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("bad control address %q: %s", e.Input, e.Err)
}
func (e *AddressError) Unwrap() error { return e.Err }

// ConnectError reports a transport-level failure reaching the endpoint.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string { return fmt.Sprintf("connect %s: %s", e.Addr, e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }

// HandshakeError reports a TLS negotiation or trust-validation failure.
// A connection that produced a HandshakeError must not be used for data.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("tls handshake: %s", e.Err) }
func (e *HandshakeError) Unwrap() error { return e.Err }

// TransportError reports a read or write failure on an established channel.
type TransportError struct {
	Op  string // "write" or "read"
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s on control channel: %s", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }
