// Package protocol defines the websocket message contract between the
// WorldSim backend and this viewer: the inbound envelope, structural
// detection of compact payloads, and the outbound control commands.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kestrelworks/worldview/internal/state"
)

// Inbound envelope types.
const (
	TypeInitialState    = "initial_state"
	TypeStateUpdate     = "state_update"
	TypeSimulationReset = "simulation_reset"
	TypeControlAck      = "control_ack"
	TypePong            = "pong"
	TypeError           = "error"
)

// Outbound message types.
const (
	TypeControl      = "control"
	TypeRequestState = "request_state"
	TypePing         = "ping"
)

// Control actions.
const (
	ActionStart = "start"
	ActionPause = "pause"
	ActionReset = "reset"
)

// ErrMalformed marks payloads that fail schema validation or decoding.
// Callers log and drop; no state changes.
var ErrMalformed = errors.New("malformed message")

// ErrUnknownType marks envelopes whose type is outside the contract.
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the outer wire frame of every inbound message.
type Envelope struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Payload is the decoded body of a state-bearing envelope. Exactly one of
// Full and Compact is set.
type Payload struct {
	Full    *state.WorldState
	Compact *state.CompactWorldState
}

// compactProbe detects the compact variant structurally: only compact
// payloads carry a region_keys array. There is no explicit flag on the wire.
type compactProbe struct {
	RegionKeys json.RawMessage `json:"region_keys"`
}

// Decode parses a raw inbound frame into its envelope, validating it against
// the message schema first. Schema or JSON failures return ErrMalformed.
func Decode(raw []byte) (Envelope, error) {
	if err := validateEnvelope(raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch env.Type {
	case TypeInitialState, TypeStateUpdate, TypeSimulationReset,
		TypeControlAck, TypePong, TypeError:
		return env, nil
	default:
		return env, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// DecodePayload interprets a state-bearing envelope's data section.
// initial_state and simulation_reset always carry a full WorldState;
// state_update may carry either form and is disambiguated structurally.
func DecodePayload(env Envelope) (Payload, error) {
	if len(env.Data) == 0 {
		return Payload{}, fmt.Errorf("%w: %s without data", ErrMalformed, env.Type)
	}

	compact := false
	if env.Type == TypeStateUpdate {
		var probe compactProbe
		if err := json.Unmarshal(env.Data, &probe); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		compact = probe.RegionKeys != nil
	}

	if compact {
		var d state.CompactWorldState
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return Payload{}, fmt.Errorf("%w: compact payload: %v", ErrMalformed, err)
		}
		return Payload{Compact: &d}, nil
	}

	var ws state.WorldState
	if err := json.Unmarshal(env.Data, &ws); err != nil {
		return Payload{}, fmt.Errorf("%w: full payload: %v", ErrMalformed, err)
	}
	if ws.Regions == nil {
		return Payload{}, fmt.Errorf("%w: full payload missing regions", ErrMalformed)
	}
	return Payload{Full: &ws}, nil
}

// ControlMsg is an outbound start/pause/reset command.
type ControlMsg struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

// NewControl builds a control command envelope.
func NewControl(action string) ControlMsg {
	return ControlMsg{Type: TypeControl, Action: action}
}

// RequestStateMsg asks the backend for an immediate full snapshot.
type RequestStateMsg struct {
	Type string `json:"type"`
}

// NewRequestState builds a full-state request. Sent after every reconnect.
func NewRequestState() RequestStateMsg {
	return RequestStateMsg{Type: TypeRequestState}
}

// PingMsg is a fire-and-forget liveness probe.
type PingMsg struct {
	Type string `json:"type"`
}

// NewPing builds a ping message.
func NewPing() PingMsg {
	return PingMsg{Type: TypePing}
}
