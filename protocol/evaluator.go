//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"crypto/rand"
	"encoding/json"
	"log"
	"net"
	"os"

	"github.com/tnystrand/yaogc/circuit"
	"github.com/tnystrand/yaogc/garble"
	"github.com/tnystrand/yaogc/ot"
	"github.com/tnystrand/yaogc/report"
)

func logState(verbose bool, s EvaluatorState) {
	if verbose {
		log.Printf("evaluator: -> %s", s)
	}
}

// RunEvaluator plays the Evaluator role over conn for one session:
// receive the garbled circuit, ACK it, receive the Garbler's own input
// wires, run one OT instance per its own input wire, evaluate, and
// report the output bits — driving the state machine LISTENING ->
// RECEIVED_CIRCUIT -> AWAITING_INPUTS -> OT_IN_PROGRESS -> EVALUATING
// -> DONE.
func RunEvaluator(conn *Conn, circ *circuit.Circuit, bBits []bool, enableOT, verbose bool) (map[circuit.Wire]bool, error) {
	if len(bBits) != len(circ.Bob) {
		return nil, ProtocolViolationError{Step: "bob input length mismatch"}
	}

	var timing *report.Timing
	if verbose {
		timing = report.NewTiming()
	}

	logState(verbose, StateListening)

	kind, data, err := conn.ReceiveMessage()
	if err != nil {
		return nil, wrapIOError(err)
	}
	if kind != KindCircuitSetup {
		return nil, ProtocolViolationError{Step: "expected CIRCUIT_SETUP"}
	}
	var setup circuitSetupPayload
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, ProtocolViolationError{Step: "malformed CIRCUIT_SETUP payload"}
	}
	if setup.Circuit == nil || setup.Circuit.ID != circ.ID {
		return nil, ProtocolViolationError{Step: "circuit id mismatch"}
	}
	tables, err := setup.tables()
	if err != nil {
		return nil, ProtocolViolationError{Step: "malformed garbled tables"}
	}
	pbitsOut, err := setup.pbitsOut()
	if err != nil {
		return nil, ProtocolViolationError{Step: "malformed output p-bits"}
	}
	logState(verbose, StateReceivedCircuit)
	if verbose {
		timing.Sample("receive circuit")
	}

	if err := conn.SendMessage(KindAck, nil); err != nil {
		return nil, wrapIOError(err)
	}

	logState(verbose, StateAwaitingInputs)
	kind, data, err = conn.ReceiveMessage()
	if err != nil {
		return nil, wrapIOError(err)
	}
	if kind != KindGarblerInputs {
		return nil, ProtocolViolationError{Step: "expected GARBLER_INPUTS"}
	}
	var inputsMsg garblerInputsPayload
	if err := json.Unmarshal(data, &inputsMsg); err != nil {
		return nil, ProtocolViolationError{Step: "malformed GARBLER_INPUTS payload"}
	}
	aliceValues, err := inputsMsg.values()
	if err != nil {
		return nil, err
	}

	logState(verbose, StateOTInProgress)
	bobValues := make(map[circuit.Wire]garble.WireValue, len(circ.Bob))
	if len(circ.Bob) > 0 {
		var receiver ot.OT
		if enableOT {
			receiver = ot.NewDH(rand.Reader)
		} else {
			receiver = ot.NewPlain()
		}
		if err := receiver.InitReceiver(conn); err != nil {
			return nil, wrapIOError(err)
		}
		results, err := receiver.Receive(bBits)
		if err != nil {
			return nil, err
		}
		for i, w := range circ.Bob {
			wv, err := garble.WireValueFromBytes(results[i])
			if err != nil {
				return nil, err
			}
			bobValues[w] = wv
		}
	}
	if verbose {
		timing.Sample("ot")
	}

	logState(verbose, StateEvaluating)
	result, err := garble.Evaluate(circ, tables, pbitsOut, aliceValues, bobValues)
	if err != nil {
		sendErr := conn.SendMessage(KindError, errorPayload{Message: err.Error()})
		if sendErr != nil {
			return nil, wrapIOError(sendErr)
		}
		return nil, err
	}

	logState(verbose, StateDone)
	if verbose {
		timing.Sample("evaluate")
		timing.Print(os.Stdout)
	}
	if err := conn.SendMessage(KindOutput, newOutputPayload(result)); err != nil {
		return nil, wrapIOError(err)
	}

	return result, nil
}

// ListenEvaluator listens on addr, accepts exactly one connection, and
// plays the Evaluator role for that one session. Long-running daemon
// behavior (accepting many sessions) lives in Serve.
func ListenEvaluator(addr string, circ *circuit.Circuit, bBits []bool, enableOT, verbose bool) (map[circuit.Wire]bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	nc, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	conn := NewConn(nc)
	defer conn.Close()

	return RunEvaluator(conn, circ, bBits, enableOT, verbose)
}
