package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
)

// Kind classifies every gateway failure into exactly one bucket.
type Kind int

const (
	// KindServerMessage carries a backend-supplied human-readable reason,
	// shown to the user verbatim.
	KindServerMessage Kind = iota + 1
	// KindTimeout means the backend produced no response within the
	// client timeout. The caller may resubmit.
	KindTimeout
	// KindNetworkUnavailable means the transport failed before any
	// response arrived.
	KindNetworkUnavailable
	// KindUnknown is the fallback for everything else.
	KindUnknown
)

// User-displayable fallback messages, in the language of the ATM UI.
const (
	msgTimeout = "Tiempo de espera agotado. Verifica tu conexión."
	msgNetwork = "No se pudo conectar con el servidor."
	msgUnknown = "Error de conexión con el servidor."
)

// Error is the single error type the gateway surfaces. Message is always
// safe to display; a raw transport error never leaks past this boundary.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status for ServerMessage errors, 0 otherwise
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// AsError returns err as a *gateway.Error when it is one.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// classifyTransport maps a transport-level failure (no HTTP response) to
// Timeout, NetworkUnavailable or Unknown.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: msgTimeout, cause: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return &Error{Kind: KindTimeout, Message: msgTimeout, cause: err}
		}
		return &Error{Kind: KindNetworkUnavailable, Message: msgNetwork, cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return &Error{Kind: KindTimeout, Message: msgTimeout, cause: err}
		}
		return &Error{Kind: KindNetworkUnavailable, Message: msgNetwork, cause: err}
	}
	return &Error{Kind: KindUnknown, Message: msgUnknown, cause: err}
}

// errorBody tolerates both the current and the legacy backend field name.
type errorBody struct {
	Message string `json:"message"`
	Mensaje string `json:"mensaje"`
}

// classifyStatus maps a non-2xx response to a ServerMessage when the body
// carries one, Unknown otherwise.
func classifyStatus(status int, body []byte) *Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		msg := eb.Message
		if msg == "" {
			msg = eb.Mensaje
		}
		if msg != "" {
			return &Error{Kind: KindServerMessage, Message: msg, Status: status}
		}
	}
	return &Error{Kind: KindUnknown, Message: msgUnknown, Status: status}
}
