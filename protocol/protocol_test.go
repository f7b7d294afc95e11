//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"sync"
	"testing"

	"github.com/tnystrand/yaogc/circuit"
)

func andCircuit() *circuit.Circuit {
	c := &circuit.Circuit{
		ID:    "and1",
		Alice: []circuit.Wire{0},
		Bob:   []circuit.Wire{1},
		Out:   []circuit.Wire{2},
		Gates: []circuit.Gate{
			{ID: 2, Type: circuit.AND, In: []circuit.Wire{0, 1}},
		},
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

func equalityCircuit() *circuit.Circuit {
	c := &circuit.Circuit{
		ID:    "eq2",
		Alice: []circuit.Wire{0, 1},
		Bob:   []circuit.Wire{2, 3},
		Out:   []circuit.Wire{6},
		Gates: []circuit.Gate{
			{ID: 4, Type: circuit.XNOR, In: []circuit.Wire{0, 2}},
			{ID: 5, Type: circuit.XNOR, In: []circuit.Wire{1, 3}},
			{ID: 6, Type: circuit.AND, In: []circuit.Wire{4, 5}},
		},
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

func greaterThanCircuit() *circuit.Circuit {
	a := []circuit.Wire{0, 1, 2, 3}
	b := []circuit.Wire{4, 5, 6, 7}
	var gates []circuit.Gate
	next := circuit.Wire(8)
	alloc := func() circuit.Wire {
		w := next
		next++
		return w
	}
	eq := make([]circuit.Wire, 4)
	gt := make([]circuit.Wire, 4)
	notB := make([]circuit.Wire, 4)
	for i := 0; i < 4; i++ {
		notB[i] = alloc()
		gates = append(gates, circuit.Gate{ID: notB[i], Type: circuit.NOT, In: []circuit.Wire{b[i]}})
		gt[i] = alloc()
		gates = append(gates, circuit.Gate{ID: gt[i], Type: circuit.AND, In: []circuit.Wire{a[i], notB[i]}})
		eq[i] = alloc()
		gates = append(gates, circuit.Gate{ID: eq[i], Type: circuit.XNOR, In: []circuit.Wire{a[i], b[i]}})
	}
	acc := gt[3]
	for i := 2; i >= 0; i-- {
		andw := alloc()
		gates = append(gates, circuit.Gate{ID: andw, Type: circuit.AND, In: []circuit.Wire{eq[i], acc}})
		orw := alloc()
		gates = append(gates, circuit.Gate{ID: orw, Type: circuit.OR, In: []circuit.Wire{gt[i], andw}})
		acc = orw
	}
	c := &circuit.Circuit{
		ID:    "gt4",
		Alice: a,
		Bob:   b,
		Out:   []circuit.Wire{acc},
		Gates: gates,
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

func pureXORCircuit() *circuit.Circuit {
	c := &circuit.Circuit{
		ID:    "xor3",
		Alice: []circuit.Wire{0, 1, 2},
		Bob:   []circuit.Wire{3, 4, 5},
		Out:   []circuit.Wire{9},
		Gates: []circuit.Gate{
			{ID: 6, Type: circuit.XOR, In: []circuit.Wire{0, 3}},
			{ID: 7, Type: circuit.XOR, In: []circuit.Wire{1, 4}},
			{ID: 8, Type: circuit.XOR, In: []circuit.Wire{2, 5}},
			{ID: 9, Type: circuit.XOR, In: []circuit.Wire{6, 7}},
		},
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

func runLoopback(t *testing.T, c *circuit.Circuit, aBits, bBits []bool, enableOT bool) map[circuit.Wire]bool {
	t.Helper()
	gConn, eConn := Pipe()

	var wg sync.WaitGroup
	var garblerErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		garblerErr = RunGarbler(gConn, c, aBits, enableOT, false)
	}()

	result, evalErr := RunEvaluator(eConn, c, bBits, enableOT, false)
	wg.Wait()

	if garblerErr != nil {
		t.Fatalf("RunGarbler: %v", garblerErr)
	}
	if evalErr != nil {
		t.Fatalf("RunEvaluator: %v", evalErr)
	}
	return result
}

func aliceBitsFor(c *circuit.Circuit, values map[circuit.Wire]bool) []bool {
	out := make([]bool, len(c.Alice))
	for i, w := range c.Alice {
		out[i] = values[w]
	}
	return out
}

func bobBitsFor(c *circuit.Circuit, values map[circuit.Wire]bool) []bool {
	out := make([]bool, len(c.Bob))
	for i, w := range c.Bob {
		out[i] = values[w]
	}
	return out
}

func TestLoopbackScenarios(t *testing.T) {
	scenarios := []struct {
		name    string
		circuit *circuit.Circuit
		alice   map[circuit.Wire]bool
		bob     map[circuit.Wire]bool
	}{
		{"and-of-one-bit", andCircuit(),
			map[circuit.Wire]bool{0: true}, map[circuit.Wire]bool{1: true}},
		{"two-bit-equality", equalityCircuit(),
			map[circuit.Wire]bool{0: true, 1: false}, map[circuit.Wire]bool{2: true, 3: false}},
		{"four-bit-greater-than", greaterThanCircuit(),
			map[circuit.Wire]bool{0: true, 1: false, 2: true, 3: false},
			map[circuit.Wire]bool{4: false, 5: true, 6: false, 7: true}},
		{"pure-xor", pureXORCircuit(),
			map[circuit.Wire]bool{0: true, 1: true, 2: false},
			map[circuit.Wire]bool{3: false, 4: true, 5: true}},
	}

	for _, sc := range scenarios {
		for _, enableOT := range []bool{true, false} {
			t.Run(sc.name, func(t *testing.T) {
				aBits := aliceBitsFor(sc.circuit, sc.alice)
				bBits := bobBitsFor(sc.circuit, sc.bob)

				got := runLoopback(t, sc.circuit, aBits, bBits, enableOT)

				want, err := sc.circuit.Eval(sc.alice, sc.bob)
				if err != nil {
					t.Fatalf("plaintext eval: %v", err)
				}
				for _, w := range sc.circuit.Out {
					if got[w] != want[w] {
						t.Errorf("ot=%v: wire %s = %v, want %v", enableOT, w, got[w], want[w])
					}
				}
			})
		}
	}
}
