package transport

import "encoding/json"

// Envelope is the wire shape of every inbound and outbound message: a
// named event plus its opaque payload. Spec §6.1 describes a Socket.IO-like
// emit/event contract; JSON envelopes are the direct, wire-visible encoding
// of that contract (unlike the teacher's protobuf-framed transport, which
// this domain has no SFU/media reason to keep).
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}
