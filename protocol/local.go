//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"crypto/rand"
	"io"

	"github.com/tnystrand/yaogc/circuit"
	"github.com/tnystrand/yaogc/garble"
	"github.com/tnystrand/yaogc/report"
)

// RunLocal runs circuitID from bundle through an exhaustive local
// check, without any network round trip: garble once, then run every
// one of the 2^(|alice|+|bob|) input combinations through the garbled
// evaluator and the plaintext oracle, printing a row per combination
// to w and failing if any diverge — cmd/yaogc's "-local circuit" mode.
// This matches the original driver's default LocalTest behavior of
// running every input through the garbled evaluator, not just
// plaintext.
//
// This lives here rather than on circuit.Bundle because it needs
// garble.Garble/garble.Evaluate, and circuit must not import garble
// (garble depends on circuit, not the reverse).
func RunLocal(w io.Writer, bundle *circuit.Bundle, circuitID string) error {
	c, err := bundle.Lookup(circuitID)
	if err != nil {
		return err
	}
	g, err := garble.Garble(c, rand.Reader)
	if err != nil {
		return err
	}
	return report.Exhaustive(w, c, g)
}

// RunLocalTable prints, to w, a garbled-table dump of one fresh
// garbling of circuitID — cmd/yaogc's "-local table" mode, matching
// the original driver's "table" mode: the raw garbled tables alone,
// with no plaintext comparison.
func RunLocalTable(w io.Writer, bundle *circuit.Bundle, circuitID string) error {
	c, err := bundle.Lookup(circuitID)
	if err != nil {
		return err
	}
	g, err := garble.Garble(c, rand.Reader)
	if err != nil {
		return err
	}
	report.GarbledTables(w, g)
	return nil
}
