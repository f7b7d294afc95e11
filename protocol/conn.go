//
// conn.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

// Package protocol implements the two-party message exchange driving
// garbling, input transfer, Oblivious Transfer, and evaluation between
// the Garbler and the Evaluator.
package protocol

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Conn is a length-prefixed framed connection: every variable-length
// value is sent as a 4-byte big-endian length followed by that many
// bytes. It also implements ot.IO, so it can drive an Oblivious
// Transfer directly without an adapter.
type Conn struct {
	closer io.Closer
	io     *bufio.ReadWriter
	Stats  IOStats
}

// IOStats tracks bytes moved over a Conn, for reporting.
type IOStats struct {
	Sent  uint64
	Recvd uint64
}

// Sub returns the difference between two stats snapshots.
func (s IOStats) Sub(o IOStats) IOStats {
	return IOStats{Sent: s.Sent - o.Sent, Recvd: s.Recvd - o.Recvd}
}

// Sum returns the total bytes moved.
func (s IOStats) Sum() uint64 {
	return s.Sent + s.Recvd
}

// NewConn wraps a byte stream as a framed Conn.
func NewConn(conn io.ReadWriter) *Conn {
	closer, _ := conn.(io.Closer)
	return &Conn{
		closer: closer,
		io: bufio.NewReadWriter(bufio.NewReader(conn),
			bufio.NewWriter(conn)),
	}
}

// Flush writes any buffered output.
func (c *Conn) Flush() error {
	return c.io.Flush()
}

// Close flushes and closes the underlying stream.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// SendByte sends a single byte.
func (c *Conn) SendByte(val byte) error {
	err := c.io.WriteByte(val)
	if err != nil {
		return err
	}
	c.Stats.Sent++
	return nil
}

// SendUint16 sends a 16-bit value.
func (c *Conn) SendUint16(val int) error {
	if err := binary.Write(c.io, binary.BigEndian, uint16(val)); err != nil {
		return err
	}
	c.Stats.Sent += 2
	return nil
}

// SendUint32 sends a 32-bit value.
func (c *Conn) SendUint32(val int) error {
	if err := binary.Write(c.io, binary.BigEndian, uint32(val)); err != nil {
		return err
	}
	c.Stats.Sent += 4
	return nil
}

// SendData sends a length-prefixed byte slice.
func (c *Conn) SendData(val []byte) error {
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	n, err := c.io.Write(val)
	if err != nil {
		return err
	}
	c.Stats.Sent += uint64(n)
	return nil
}

// SendString sends a length-prefixed string.
func (c *Conn) SendString(val string) error {
	return c.SendData([]byte(val))
}

// ReceiveByte receives a single byte.
func (c *Conn) ReceiveByte() (byte, error) {
	b, err := c.io.ReadByte()
	if err != nil {
		return 0, err
	}
	c.Stats.Recvd++
	return b, nil
}

// ReceiveUint16 receives a 16-bit value.
func (c *Conn) ReceiveUint16() (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(c.io, buf[:]); err != nil {
		return 0, err
	}
	c.Stats.Recvd += 2
	return int(binary.BigEndian.Uint16(buf[:])), nil
}

// ReceiveUint32 receives a 32-bit value.
func (c *Conn) ReceiveUint32() (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(c.io, buf[:]); err != nil {
		return 0, err
	}
	c.Stats.Recvd += 4
	return int(binary.BigEndian.Uint32(buf[:])), nil
}

// ReceiveData receives a length-prefixed byte slice.
func (c *Conn) ReceiveData() ([]byte, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	result := make([]byte, n)
	if _, err := io.ReadFull(c.io, result); err != nil {
		return nil, err
	}
	c.Stats.Recvd += uint64(n)
	return result, nil
}

// ReceiveString receives a length-prefixed string.
func (c *Conn) ReceiveString() (string, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
