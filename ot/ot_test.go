//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"
	"sync"
	"testing"
)

// pipeIO is a minimal IO implementation over an io.Pipe, used to
// connect a Sender and Receiver in-process for these tests — the same
// shape as protocol.Conn's framing, kept self-contained here to avoid
// an import cycle with the protocol package.
type pipeIO struct {
	rw *bufio.ReadWriter
}

func newPipeIOPair() (*pipeIO, *pipeIO) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a := &pipeIO{rw: bufio.NewReadWriter(bufio.NewReader(ar), bufio.NewWriter(aw))}
	b := &pipeIO{rw: bufio.NewReadWriter(bufio.NewReader(br), bufio.NewWriter(bw))}
	return a, b
}

func (p *pipeIO) Flush() error {
	return p.rw.Flush()
}

func (p *pipeIO) SendUint32(val int) error {
	return binary.Write(p.rw, binary.BigEndian, uint32(val))
}

func (p *pipeIO) SendData(val []byte) error {
	if err := p.SendUint32(len(val)); err != nil {
		return err
	}
	_, err := p.rw.Write(val)
	return err
}

func (p *pipeIO) ReceiveUint32() (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(p.rw, buf[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(buf[:])), nil
}

func (p *pipeIO) ReceiveData() ([]byte, error) {
	n, err := p.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.rw, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func TestDHTransferBothBits(t *testing.T) {
	senderIO, receiverIO := newPipeIOPair()

	sender := NewDH(rand.Reader)
	receiver := NewDH(rand.Reader)
	if err := sender.InitSender(senderIO); err != nil {
		t.Fatalf("InitSender: %v", err)
	}
	if err := receiver.InitReceiver(receiverIO); err != nil {
		t.Fatalf("InitReceiver: %v", err)
	}

	wires := []Wire{
		{M0: Message("message-zero"), M1: Message("message-one")},
	}

	for _, bit := range []bool{false, true} {
		var wg sync.WaitGroup
		var recvErr, sendErr error
		var got []Message

		wg.Add(2)
		go func() {
			defer wg.Done()
			sendErr = sender.Send(wires)
		}()
		go func() {
			defer wg.Done()
			got, recvErr = receiver.Receive([]bool{bit})
		}()
		wg.Wait()

		if sendErr != nil {
			t.Fatalf("Send: %v", sendErr)
		}
		if recvErr != nil {
			t.Fatalf("Receive: %v", recvErr)
		}
		want := "message-zero"
		if bit {
			want = "message-one"
		}
		if string(got[0]) != want {
			t.Errorf("bit=%v: got %q, want %q", bit, got[0], want)
		}
	}
}

func TestGroupCheckHolds(t *testing.T) {
	// For every honestly produced (h0, h1) pair, h0*h1 = C mod p.
	for _, c := range []bool{false, true} {
		x, err := randExponent(rand.Reader)
		if err != nil {
			t.Fatalf("randExponent: %v", err)
		}
		gx := new(big.Int).Exp(groupG, x, groupP)
		gxInv := new(big.Int).ModInverse(gx, groupP)
		other := new(big.Int).Mul(groupC, gxInv)
		other.Mod(other, groupP)

		var h0, h1 *big.Int
		if c {
			h0, h1 = other, gx
		} else {
			h0, h1 = gx, other
		}

		product := new(big.Int).Mul(h0, h1)
		product.Mod(product, groupP)
		if product.Cmp(groupC) != 0 {
			t.Errorf("c=%v: h0*h1 != C", c)
		}
	}
}

func TestPlainTransferBothBits(t *testing.T) {
	senderIO, receiverIO := newPipeIOPair()

	sender := NewPlain()
	receiver := NewPlain()
	if err := sender.InitSender(senderIO); err != nil {
		t.Fatalf("InitSender: %v", err)
	}
	if err := receiver.InitReceiver(receiverIO); err != nil {
		t.Fatalf("InitReceiver: %v", err)
	}

	wires := []Wire{{M0: Message("zero"), M1: Message("one")}}

	for _, bit := range []bool{false, true} {
		var wg sync.WaitGroup
		var recvErr, sendErr error
		var got []Message

		wg.Add(2)
		go func() {
			defer wg.Done()
			sendErr = sender.Send(wires)
		}()
		go func() {
			defer wg.Done()
			got, recvErr = receiver.Receive([]bool{bit})
		}()
		wg.Wait()

		if sendErr != nil {
			t.Fatalf("Send: %v", sendErr)
		}
		if recvErr != nil {
			t.Fatalf("Receive: %v", recvErr)
		}
		want := "zero"
		if bit {
			want = "one"
		}
		if string(got[0]) != want {
			t.Errorf("bit=%v: got %q, want %q", bit, got[0], want)
		}
	}
}
