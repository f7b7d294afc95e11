//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"encoding/json"
	"strconv"

	"github.com/tnystrand/yaogc/circuit"
	"github.com/tnystrand/yaogc/garble"
)

// MessageKind tags the body of a frame with one of the message kinds
// of the wire protocol.
type MessageKind uint32

// Message kinds, in session order. The OT exchange of step 4 runs over
// the same Conn as untagged length-prefixed frames (through ot.IO), so
// KindOTReceiver and KindOTSender are defined but never sent.
const (
	KindCircuitSetup MessageKind = iota
	KindAck
	KindGarblerInputs
	KindOTReceiver
	KindOTSender
	KindOutput
	KindError
)

func (k MessageKind) String() string {
	switch k {
	case KindCircuitSetup:
		return "CIRCUIT_SETUP"
	case KindAck:
		return "ACK"
	case KindGarblerInputs:
		return "GARBLER_INPUTS"
	case KindOTReceiver:
		return "OT_RECEIVER"
	case KindOTSender:
		return "OT_SENDER"
	case KindOutput:
		return "OUTPUT"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SendMessage sends a tagged frame: a 4-byte kind followed by a
// length-prefixed JSON payload.
func (c *Conn) SendMessage(kind MessageKind, payload interface{}) error {
	if err := c.SendUint32(int(kind)); err != nil {
		return err
	}
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}
	if err := c.SendData(data); err != nil {
		return err
	}
	return c.Flush()
}

// ReceiveMessage reads a tagged frame's kind and raw JSON payload; the
// caller unmarshals the payload according to the kind.
func (c *Conn) ReceiveMessage() (MessageKind, []byte, error) {
	kind, err := c.ReceiveUint32()
	if err != nil {
		return 0, nil, wrapIOError(err)
	}
	data, err := c.ReceiveData()
	if err != nil {
		return 0, nil, wrapIOError(err)
	}
	return MessageKind(kind), data, nil
}

func wireKey(w circuit.Wire) string {
	return strconv.FormatUint(uint64(w), 10)
}

func parseWireKey(s string) (circuit.Wire, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return circuit.Wire(v), nil
}

// circuitSetupPayload is step 1 of the message flow: circuit metadata,
// garbled tables, and output p-bits.
type circuitSetupPayload struct {
	Circuit  *circuit.Circuit              `json:"circuit"`
	Tables   map[string]garble.GarbledGate `json:"tables"`
	PBitsOut map[string]bool               `json:"pbits_out"`
}

func newCircuitSetupPayload(g *garble.Garbled) *circuitSetupPayload {
	p := &circuitSetupPayload{
		Circuit:  g.Circuit,
		Tables:   make(map[string]garble.GarbledGate, len(g.Tables)),
		PBitsOut: make(map[string]bool, len(g.PBitsOut)),
	}
	for w, t := range g.Tables {
		p.Tables[wireKey(w)] = t
	}
	for w, b := range g.PBitsOut {
		p.PBitsOut[wireKey(w)] = b
	}
	return p
}

func (p *circuitSetupPayload) tables() (map[circuit.Wire]garble.GarbledGate, error) {
	out := make(map[circuit.Wire]garble.GarbledGate, len(p.Tables))
	for k, t := range p.Tables {
		w, err := parseWireKey(k)
		if err != nil {
			return nil, err
		}
		out[w] = t
	}
	return out, nil
}

func (p *circuitSetupPayload) pbitsOut() (map[circuit.Wire]bool, error) {
	out := make(map[circuit.Wire]bool, len(p.PBitsOut))
	for k, b := range p.PBitsOut {
		w, err := parseWireKey(k)
		if err != nil {
			return nil, err
		}
		out[w] = b
	}
	return out, nil
}

// wireValueJSON is the wire encoding of a garble.WireValue.
type wireValueJSON struct {
	Key []byte `json:"key"`
	E   bool   `json:"e"`
}

// garblerInputsPayload is step 3: the Garbler's own input wires, sent
// in the clear (safe without the p-bit, per the data model).
type garblerInputsPayload struct {
	Inputs map[string]wireValueJSON `json:"inputs"`
}

func newGarblerInputsPayload(values map[circuit.Wire]garble.WireValue) *garblerInputsPayload {
	p := &garblerInputsPayload{Inputs: make(map[string]wireValueJSON, len(values))}
	for w, v := range values {
		p.Inputs[wireKey(w)] = wireValueJSON{Key: v.Key.Bytes(), E: v.E}
	}
	return p
}

func (p *garblerInputsPayload) values() (map[circuit.Wire]garble.WireValue, error) {
	out := make(map[circuit.Wire]garble.WireValue, len(p.Inputs))
	for k, v := range p.Inputs {
		w, err := parseWireKey(k)
		if err != nil {
			return nil, err
		}
		if len(v.Key) != garble.LabelSize {
			return nil, ProtocolViolationError{Step: "garbler inputs: bad key length"}
		}
		var key garble.Label
		copy(key[:], v.Key)
		out[w] = garble.WireValue{Key: key, E: v.E}
	}
	return out, nil
}

// outputPayload is step 6: output bits reported back to the Garbler.
type outputPayload struct {
	Outputs map[string]bool `json:"outputs"`
}

func newOutputPayload(values map[circuit.Wire]bool) *outputPayload {
	p := &outputPayload{Outputs: make(map[string]bool, len(values))}
	for w, b := range values {
		p.Outputs[wireKey(w)] = b
	}
	return p
}

// errorPayload carries a human-readable reason alongside KindError.
type errorPayload struct {
	Message string `json:"message"`
}
