package probe

import "time"

// Kind classifies the result of a single probe.
type Kind int

const (
	// KindSuccess means the endpoint answered with a 2xx status.
	KindSuccess Kind = iota

	// KindHTTPError means the endpoint answered with a non-2xx status.
	KindHTTPError

	// KindTransportError means the request failed below HTTP: connection
	// refused, connection lost, or timeout.
	KindTransportError

	// KindInitError means the request object itself could not be built.
	KindInitError
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http_error"
	case KindTransportError:
		return "transport_error"
	case KindInitError:
		return "init_error"
	default:
		return "unknown"
	}
}

// TransportKind subdivides transport failures for diagnostics only;
// all kinds are handled identically.
type TransportKind int

const (
	TransportOther TransportKind = iota
	TransportRefused
	TransportLost
	TransportTimeout
)

// String returns a short label for the transport failure kind.
func (t TransportKind) String() string {
	switch t {
	case TransportRefused:
		return "connection_refused"
	case TransportLost:
		return "connection_lost"
	case TransportTimeout:
		return "read_timeout"
	default:
		return "other"
	}
}

// Outcome is the classified result of one probe invocation.
type Outcome struct {
	// Kind is the outcome classification.
	Kind Kind

	// StatusCode is the HTTP status code, when a response was received.
	StatusCode int

	// BodyLen is the response body length in bytes, for successes.
	BodyLen int

	// Transport subdivides transport failures. Only meaningful when
	// Kind is KindTransportError.
	Transport TransportKind

	// Latency is the total time taken by the probe.
	Latency time.Duration

	// Err holds the underlying error for init and transport failures.
	Err error
}

// OK reports whether the probe succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}
