//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/tnystrand/yaogc/circuit"
	"github.com/tnystrand/yaogc/garble"
	"github.com/tnystrand/yaogc/ot"
	"github.com/tnystrand/yaogc/report"
)

// InputProvider supplies a party's plaintext input bits for a circuit,
// the capability the core accepts instead of reading them directly —
// cmd/yaogc's flag-parsed bit vectors and any future interactive shell
// both satisfy this interface without the core needing to change.
type InputProvider interface {
	Bits(c *circuit.Circuit) ([]bool, error)
}

// OutputSink receives the Evaluator's output bits.
type OutputSink interface {
	Output(result map[circuit.Wire]bool) error
}

// BitVector is an InputProvider backed by a fixed, pre-chosen []bool.
type BitVector []bool

// Bits implements InputProvider.
func (v BitVector) Bits(c *circuit.Circuit) ([]bool, error) {
	return []bool(v), nil
}

// PrintSink is an OutputSink that prints output bits to stdout.
type PrintSink struct{}

// Output implements OutputSink.
func (PrintSink) Output(result map[circuit.Wire]bool) error {
	for w, b := range result {
		fmt.Printf("output %s = %v\n", w, b)
	}
	return nil
}

// RunGarbler plays the Garbler role over conn for one session: garble
// the circuit fresh, send circuit setup, send its own input wires in
// the clear, run one OT instance per Evaluator input wire, per the
// message flow of the design. A fresh Garbled must be produced for
// every call — the garbled material must never be reused across two
// sessions.
func RunGarbler(conn *Conn, circ *circuit.Circuit, aBits []bool, enableOT, verbose bool) error {
	if len(aBits) != len(circ.Alice) {
		return ProtocolViolationError{Step: "alice input length mismatch"}
	}

	var timing *report.Timing
	if verbose {
		timing = report.NewTiming()
	}

	g, err := garble.Garble(circ, rand.Reader)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("garbler: garbled %s", circ)
		timing.Sample("garble")
	}

	// Step 1: circuit setup.
	if err := conn.SendMessage(KindCircuitSetup, newCircuitSetupPayload(g)); err != nil {
		return wrapIOError(err)
	}

	// Step 2: ACK.
	kind, _, err := conn.ReceiveMessage()
	if err != nil {
		return wrapIOError(err)
	}
	if kind != KindAck {
		return ProtocolViolationError{Step: "expected ACK after circuit setup"}
	}
	if verbose {
		log.Printf("garbler: received ACK")
	}

	// Step 3: Alice's own input wires, sent in the clear.
	aliceValues := make(map[circuit.Wire]garble.WireValue, len(circ.Alice))
	for i, w := range circ.Alice {
		wk := g.Keys[w]
		aliceValues[w] = garble.WireValue{Key: wk.Key(aBits[i]), E: wk.Enc(aBits[i])}
	}
	if err := conn.SendMessage(KindGarblerInputs, newGarblerInputsPayload(aliceValues)); err != nil {
		return wrapIOError(err)
	}

	// Step 4: one OT instance per Evaluator input wire.
	if len(circ.Bob) > 0 {
		var sender ot.OT
		if enableOT {
			sender = ot.NewDH(rand.Reader)
		} else {
			sender = ot.NewPlain()
		}
		if err := sender.InitSender(conn); err != nil {
			return wrapIOError(err)
		}
		wires := make([]ot.Wire, len(circ.Bob))
		for i, w := range circ.Bob {
			m0, m1 := g.Keys[w].OTMessages()
			wires[i] = ot.Wire{M0: m0, M1: m1}
		}
		if err := sender.Send(wires); err != nil {
			return err
		}
		if verbose {
			log.Printf("garbler: completed %d OT transfers", len(wires))
			timing.Sample("ot")
		}
	}

	// Step 6: the Evaluator reports its output bits (or an error) back;
	// any other message, or a closed stream, fails the session.
	kind, data, err := conn.ReceiveMessage()
	if err != nil {
		return wrapIOError(err)
	}
	switch kind {
	case KindOutput:
		if verbose {
			log.Printf("garbler: received output report")
			timing.Sample("await output")
			timing.Print(os.Stdout)
		}
		_ = data
	case KindError:
		var ep errorPayload
		if err := json.Unmarshal(data, &ep); err != nil {
			return ProtocolViolationError{Step: "evaluator reported an unparsable error"}
		}
		return ProtocolViolationError{Step: "evaluator reported error: " + ep.Message}
	default:
		return ProtocolViolationError{Step: "unexpected message after OT"}
	}

	return nil
}

// DialGarbler dials addr and plays the Garbler role for one session.
func DialGarbler(addr string, circ *circuit.Circuit, inputs InputProvider, enableOT, verbose bool) error {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	conn := NewConn(nc)
	defer conn.Close()

	aBits, err := inputs.Bits(circ)
	if err != nil {
		return err
	}
	return RunGarbler(conn, circ, aBits, enableOT, verbose)
}
