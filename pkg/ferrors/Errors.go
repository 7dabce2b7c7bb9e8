package ferrors

import "fmt"


//=========================================== Error Taxonomy


/*
	ConfigError: unknown handler identifier, or async-queue overflow
	(more than N messages queued on one lane for a key). Fatal -- callers
	are expected to log.Fatal on receipt (spec.md §7).
*/

type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

func NewConfigError(reason string) *ConfigError {
	return &ConfigError{Reason: reason}
}

/*
	ProtocolError: a payload failed to parse against the schema expected
	for its message tag. Fatal.
*/

type ProtocolError struct {
	Tag    int32
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on tag %d: %s", e.Tag, e.Reason)
}

func NewProtocolError(tag int32, reason string) *ProtocolError {
	return &ProtocolError{Tag: tag, Reason: reason}
}

/*
	TransportError: the underlying send/receive returned an error. Never
	fatal -- the transceiver increments the SendRecord's failure count and
	retries transparently; there is no bounded retry limit in the core,
	policy is delegated to the caller (spec.md §7).
*/

type TransportError struct {
	Peer   int
	Reason string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error with peer %d: %s", e.Peer, e.Reason)
}

func NewTransportError(peer int, reason string) *TransportError {
	return &TransportError{Peer: peer, Reason: reason}
}
