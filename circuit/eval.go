//
// Copyright (c) 2019 Markku Rossi
//
// All rights reserved.
//

package circuit

// Eval evaluates the circuit in plaintext, given the bits assigned to
// Alice's and Bob's input wires. It returns the bit value of every
// wire named in c.Out. Eval is used both as a correctness oracle
// against the garbled evaluator and by RunLocal's non-networked mode.
func (c *Circuit) Eval(alice, bob map[Wire]bool) (map[Wire]bool, error) {
	values := make(map[Wire]bool, c.NumWires)

	for _, w := range c.Alice {
		v, ok := alice[w]
		if !ok {
			return nil, InvalidCircuitError{
				Reason: "missing alice input for " + w.String(),
			}
		}
		values[w] = v
	}
	for _, w := range c.Bob {
		v, ok := bob[w]
		if !ok {
			return nil, InvalidCircuitError{
				Reason: "missing bob input for " + w.String(),
			}
		}
		values[w] = v
	}

	for _, g := range c.Gates {
		a, ok := values[g.Input0()]
		if !ok {
			return nil, InvalidCircuitError{
				Reason: "gate references undefined wire " + g.Input0().String(),
			}
		}
		var b bool
		if g.Type.Arity() == 2 {
			b, ok = values[g.Input1()]
			if !ok {
				return nil, InvalidCircuitError{
					Reason: "gate references undefined wire " + g.Input1().String(),
				}
			}
		}
		values[g.ID] = g.Type.Eval(a, b)
	}

	result := make(map[Wire]bool, len(c.Out))
	for _, w := range c.Out {
		v, ok := values[w]
		if !ok {
			return nil, InvalidCircuitError{
				Reason: "output wire " + w.String() + " never assigned",
			}
		}
		result[w] = v
	}
	return result, nil
}
