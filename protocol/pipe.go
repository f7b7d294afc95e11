//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package protocol

import (
	"io"
)

// Pipe implements a bidirectional in-process connection pair: data
// sent to one endpoint is received from the other and vice versa.
// Used to connect a Garbler and an Evaluator in-process for tests.
func Pipe() (*Conn, *Conn) {
	var p0, p1 pipe

	p0.r, p1.w = io.Pipe()
	p1.r, p0.w = io.Pipe()

	return NewConn(&p0), NewConn(&p1)
}

type pipe struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipe) Close() error {
	if err := p.r.Close(); err != nil {
		return err
	}
	return p.w.Close()
}

func (p *pipe) Read(data []byte) (n int, err error) {
	return p.r.Read(data)
}

func (p *pipe) Write(data []byte) (n int, err error) {
	return p.w.Write(data)
}
