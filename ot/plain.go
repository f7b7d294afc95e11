//
// plain.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package ot

import "log"

// Plain is a non-secure OT stand-in: the Sender sends both messages
// in the clear and the Receiver just picks the one its flag selects.
// It exists only for local testing with enable_ot=false and must
// never be used for an actual two-party session — every transfer logs
// a warning so it cannot end up unnoticed in a real run's output.
type Plain struct {
	io IO
}

// NewPlain creates an insecure pass-through OT stand-in.
func NewPlain() *Plain {
	return &Plain{}
}

// InitSender implements OT.
func (p *Plain) InitSender(io IO) error {
	p.io = io
	return nil
}

// InitReceiver implements OT.
func (p *Plain) InitReceiver(io IO) error {
	p.io = io
	return nil
}

// Send implements OT by sending both messages of every wire in the
// clear.
func (p *Plain) Send(wires []Wire) error {
	log.Printf("ot: INSECURE plaintext transfer — test only")
	for _, w := range wires {
		if err := p.io.SendData(w.M0); err != nil {
			return err
		}
		if err := p.io.SendData(w.M1); err != nil {
			return err
		}
	}
	return p.io.Flush()
}

// Receive implements OT by reading both messages and keeping the one
// selected by each flag.
func (p *Plain) Receive(flags []bool) ([]Message, error) {
	log.Printf("ot: INSECURE plaintext transfer — test only")
	result := make([]Message, len(flags))
	for i, c := range flags {
		m0, err := p.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		m1, err := p.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if c {
			result[i] = m1
		} else {
			result[i] = m0
		}
	}
	return result, nil
}
