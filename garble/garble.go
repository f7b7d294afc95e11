//
// garble.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"io"

	"github.com/tnystrand/yaogc/circuit"
)

// Garbled is a garbled circuit: per-wire key pairs and p-bits, the
// per-gate encrypted tables, and the cleartext p-bits of the output
// wires the Evaluator needs to recover plaintext results. It holds a
// reference to the underlying Circuit; the Circuit never references
// Garbled back.
type Garbled struct {
	Circuit  *circuit.Circuit
	Keys     map[circuit.Wire]WireKeys
	Tables   map[circuit.Wire]GarbledGate
	PBitsOut map[circuit.Wire]bool
}

// Garble produces a fresh garbling of c using randomness from rand.
// A garbling must never be evaluated on more than one input pair; the
// caller is responsible for drawing a new Garbled per session.
func Garble(c *circuit.Circuit, rand io.Reader) (*Garbled, error) {
	g := &Garbled{
		Circuit:  c,
		Keys:     make(map[circuit.Wire]WireKeys, c.NumWires),
		Tables:   make(map[circuit.Wire]GarbledGate, len(c.Gates)),
		PBitsOut: make(map[circuit.Wire]bool, len(c.Out)),
	}

	newWireKeys := func() (WireKeys, error) {
		var wk WireKeys
		var pbit [1]byte
		if _, err := rand.Read(pbit[:]); err != nil {
			return wk, CryptoFailureError{Reason: err.Error()}
		}
		k0, err := NewLabel(rand)
		if err != nil {
			return wk, CryptoFailureError{Reason: err.Error()}
		}
		k1, err := NewLabel(rand)
		if err != nil {
			return wk, CryptoFailureError{Reason: err.Error()}
		}
		wk.K0, wk.K1 = k0, k1
		wk.P = pbit[0]&1 != 0
		return wk, nil
	}

	for _, w := range c.Alice {
		wk, err := newWireKeys()
		if err != nil {
			return nil, err
		}
		g.Keys[w] = wk
	}
	for _, w := range c.Bob {
		wk, err := newWireKeys()
		if err != nil {
			return nil, err
		}
		g.Keys[w] = wk
	}

	for _, gate := range c.Gates {
		wk, err := newWireKeys()
		if err != nil {
			return nil, err
		}
		g.Keys[gate.ID] = wk

		table, err := garbleGate(gate, g.Keys, rand)
		if err != nil {
			return nil, err
		}
		g.Tables[gate.ID] = table
	}

	for _, w := range c.Out {
		g.PBitsOut[w] = g.Keys[w].P
	}

	return g, nil
}

// garbleGate builds the encrypted truth table for a single gate, per
// the construction of the data model: every (bu, bv) row is computed,
// its output bit found by plaintext evaluation, and the row stored at
// the index of the externally visible encrypted input bits.
func garbleGate(gate circuit.Gate, keys map[circuit.Wire]WireKeys, rand io.Reader) (GarbledGate, error) {
	u := keys[gate.Input0()]

	if gate.Type.Arity() == 1 {
		rows := make([]Row, 2)
		for _, bu := range []bool{false, true} {
			bOut := gate.Type.Eval(bu, false)
			w := keys[gate.ID]
			payload := packPayload(w.Key(bOut), w.Enc(bOut))
			row := idxUnary(u.Enc(bu))
			r, err := encryptRowUnary(u.Key(bu), gate.ID, row, payload)
			if err != nil {
				return GarbledGate{}, err
			}
			rows[row] = r
		}
		return GarbledGate{Rows: rows}, nil
	}

	v := keys[gate.Input1()]
	rows := make([]Row, 4)
	for _, bu := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			bOut := gate.Type.Eval(bu, bv)
			w := keys[gate.ID]
			payload := packPayload(w.Key(bOut), w.Enc(bOut))
			row := idx(u.Enc(bu), v.Enc(bv))
			r, err := encryptRow(u.Key(bu), v.Key(bv), gate.ID, row, payload)
			if err != nil {
				return GarbledGate{}, err
			}
			rows[row] = r
		}
	}
	return GarbledGate{Rows: rows}, nil
}
