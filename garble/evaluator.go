//
// evaluator.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"github.com/tnystrand/yaogc/circuit"
)

// Evaluate runs a garbled circuit to completion given the tables and
// output p-bits produced by Garble, and the per-input-wire (key,
// encrypted-bit) values the Evaluator holds — Alice's sent directly
// over the channel, Bob's obtained via Oblivious Transfer. Gates are
// processed in the circuit's topological (gate-list) order; a gate
// referencing a wire with no assigned value is a programmer error,
// since circuit.Bundle.Validate rejects that at parse time.
func Evaluate(
	c *circuit.Circuit,
	tables map[circuit.Wire]GarbledGate,
	pbitsOut map[circuit.Wire]bool,
	aInputs, bInputs map[circuit.Wire]WireValue,
) (map[circuit.Wire]bool, error) {
	values := make(map[circuit.Wire]WireValue, c.NumWires)
	for w, v := range aInputs {
		values[w] = v
	}
	for w, v := range bInputs {
		values[w] = v
	}

	for _, gate := range c.Gates {
		u, ok := values[gate.Input0()]
		if !ok {
			return nil, CryptoFailureError{
				Reason: "no value for wire " + gate.Input0().String(),
			}
		}
		table := tables[gate.ID]

		if gate.Type.Arity() == 1 {
			row := idxUnary(u.E)
			if row >= len(table.Rows) {
				return nil, MalformedGarbledTableError{Gate: int(gate.ID), Row: row}
			}
			payload, err := decryptRowUnary(u.Key, gate.ID, row, table.Rows[row])
			if err != nil {
				return nil, err
			}
			key, bit, err := unpackPayload(payload)
			if err != nil {
				return nil, err
			}
			values[gate.ID] = WireValue{Key: key, E: bit}
			continue
		}

		v, ok := values[gate.Input1()]
		if !ok {
			return nil, CryptoFailureError{
				Reason: "no value for wire " + gate.Input1().String(),
			}
		}
		row := idx(u.E, v.E)
		if row >= len(table.Rows) {
			return nil, MalformedGarbledTableError{Gate: int(gate.ID), Row: row}
		}
		payload, err := decryptRow(u.Key, v.Key, gate.ID, row, table.Rows[row])
		if err != nil {
			return nil, err
		}
		key, bit, err := unpackPayload(payload)
		if err != nil {
			return nil, err
		}
		values[gate.ID] = WireValue{Key: key, E: bit}
	}

	result := make(map[circuit.Wire]bool, len(c.Out))
	for _, w := range c.Out {
		v, ok := values[w]
		if !ok {
			return nil, CryptoFailureError{
				Reason: "output wire " + w.String() + " never assigned",
			}
		}
		result[w] = v.E != pbitsOut[w]
	}
	return result, nil
}
