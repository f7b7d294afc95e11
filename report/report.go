//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

// Package report prints human-readable tables for circuits and garbled
// circuits: gate-kind statistics, an exhaustive garbled-vs-plaintext
// check, and garbled table dumps, all built on
// github.com/markkurossi/tabulate the way apps/garbled's objdump.go
// builds its per-file statistics table.
package report

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"

	"github.com/tnystrand/yaogc/circuit"
	"github.com/tnystrand/yaogc/garble"
)

// Stats prints one row per circuit with its gate-kind counts, mirroring
// objdump.go's file table but keyed by circuit ID instead of filename.
func Stats(w io.Writer, circuits []*circuit.Circuit) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Circuit")
	tab.Header("XOR").SetAlign(tabulate.MR)
	tab.Header("XNOR").SetAlign(tabulate.MR)
	tab.Header("AND").SetAlign(tabulate.MR)
	tab.Header("OR").SetAlign(tabulate.MR)
	tab.Header("NOR").SetAlign(tabulate.MR)
	tab.Header("NAND").SetAlign(tabulate.MR)
	tab.Header("NOT").SetAlign(tabulate.MR)
	tab.Header("Gates").SetAlign(tabulate.MR)
	tab.Header("Wires").SetAlign(tabulate.MR)

	for _, c := range circuits {
		row := tab.Row()
		row.Column(c.ID)
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.XOR]))
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.XNOR]))
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.AND]))
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.OR]))
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.NOR]))
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.NAND]))
		row.Column(fmt.Sprintf("%d", c.Stats[circuit.NOT]))
		row.Column(fmt.Sprintf("%d", len(c.Gates)))
		row.Column(fmt.Sprintf("%d", c.NumWires))
	}
	tab.Print(w)
}

// Exhaustive prints, and checks, a full truth table for c: every
// combination of Alice's and Bob's input bits is run through both the
// garbled evaluator (using the already-produced garbling g) and the
// plaintext oracle, and a row is printed for each showing whether the
// two agree — the exhaustive-mode report of the original driver's
// default LocalTest behavior (every input run through the garbled
// evaluator, not just plaintext). Returns an error identifying how
// many rows diverged, after printing the full table, if any do.
func Exhaustive(w io.Writer, c *circuit.Circuit, g *garble.Garbled) error {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Alice")
	tab.Header("Bob")
	tab.Header("Garbled")
	tab.Header("Plaintext")
	tab.Header("Match")

	na := len(c.Alice)
	nb := len(c.Bob)
	var mismatches int

	for a := 0; a < 1<<uint(na); a++ {
		for b := 0; b < 1<<uint(nb); b++ {
			alice := make(map[circuit.Wire]bool, na)
			aInputs := make(map[circuit.Wire]garble.WireValue, na)
			for i, wire := range c.Alice {
				bit := a&(1<<uint(i)) != 0
				alice[wire] = bit
				wk := g.Keys[wire]
				aInputs[wire] = garble.WireValue{Key: wk.Key(bit), E: wk.Enc(bit)}
			}
			bob := make(map[circuit.Wire]bool, nb)
			bInputs := make(map[circuit.Wire]garble.WireValue, nb)
			for i, wire := range c.Bob {
				bit := b&(1<<uint(i)) != 0
				bob[wire] = bit
				wk := g.Keys[wire]
				bInputs[wire] = garble.WireValue{Key: wk.Key(bit), E: wk.Enc(bit)}
			}

			garbledOut, err := garble.Evaluate(c, g.Tables, g.PBitsOut, aInputs, bInputs)
			if err != nil {
				return err
			}
			plainOut, err := c.Eval(alice, bob)
			if err != nil {
				return err
			}

			garbledStr := bitsString(c.Out, garbledOut)
			plainStr := bitsString(c.Out, plainOut)
			match := garbledStr == plainStr
			if !match {
				mismatches++
			}

			row := tab.Row()
			row.Column(bitsString(c.Alice, alice))
			row.Column(bitsString(c.Bob, bob))
			row.Column(garbledStr)
			row.Column(plainStr)
			if match {
				row.Column("ok")
			} else {
				row.Column("MISMATCH")
			}
		}
	}
	tab.Print(w)

	if mismatches > 0 {
		return fmt.Errorf("exhaustive check: %d of %d row(s) diverge from plaintext evaluation",
			mismatches, (1<<uint(na))*(1<<uint(nb)))
	}
	return nil
}

func bitsString(order []circuit.Wire, values map[circuit.Wire]bool) string {
	s := make([]byte, len(order))
	for i, w := range order {
		if values[w] {
			s[i] = '1'
		} else {
			s[i] = '0'
		}
	}
	return string(s)
}

// GarbledTables prints every gate's encrypted row contents, a debugging
// dump with no counterpart in the distilled spec — useful to eyeball
// that point-and-permute row order actually varies across runs.
func GarbledTables(w io.Writer, g *garble.Garbled) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Gate")
	tab.Header("Row").SetAlign(tabulate.MR)
	tab.Header("Nonce (outer)")
	tab.Header("Cipher")

	for _, gate := range g.Circuit.Gates {
		table := g.Tables[gate.ID]
		for i, r := range table.Rows {
			row := tab.Row()
			row.Column(gate.ID.String())
			row.Column(fmt.Sprintf("%d", i))
			row.Column(hex.EncodeToString(r.NonceOuter[:]))
			row.Column(hex.EncodeToString(r.Cipher))
		}
	}
	tab.Print(w)
}
