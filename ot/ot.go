//
// ot.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.

// Package ot implements 1-out-of-2 Oblivious Transfer: a Bellare–
// Micali construction over a fixed prime-order Diffie–Hellman group,
// plus an insecure pass-through mode for local testing.
package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"math/big"

	"github.com/markkurossi/text/superscript"
	"golang.org/x/crypto/hkdf"
)

// Verbose enables per-round debug tracing of DH exponent rounds to
// stderr via log.Printf, labeled with the round count rendered as a
// superscript (matching the teacher's peer-id labeling style).
var Verbose bool

func trace(round int, format string, args ...interface{}) {
	if !Verbose {
		return
	}
	label := "g" + superscript.Itoa(round)
	log.Printf("ot: %s: "+format, append([]interface{}{label}, args...)...)
}

// Message is one of the two values a Sender offers per transfer; for
// the garbled-circuit protocol this is a wire key concatenated with
// its externally visible encrypted bit.
type Message []byte

// Wire holds the pair of messages offered for one input wire's OT
// instance: (m0, m1) for plaintext bit values 0 and 1.
type Wire struct {
	M0, M1 Message
}

// OT defines the base 1-out-of-2 Oblivious Transfer protocol. Send
// runs one independent transfer per element of wires; Receive runs
// one independent transfer per element of flags, in the same order,
// per the batching rule of the design (shared group parameters,
// independent randomness per instance).
type OT interface {
	// InitSender initializes the OT sender side of io.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver side of io.
	InitReceiver(io IO) error

	// Send offers each wire's pair of messages.
	Send(wires []Wire) error

	// Receive obtains, for each flag, the message selected by that
	// flag from the corresponding Sender call.
	Receive(flags []bool) ([]Message, error)
}

// DH is the Bellare–Micali Diffie–Hellman OT, the default secure
// implementation of OT.
type DH struct {
	rand io.Reader
	io   IO
}

// NewDH creates a DH OT instance drawing randomness from rand (use
// crypto/rand.Reader in production; tests may inject a deterministic
// source).
func NewDH(rand io.Reader) *DH {
	return &DH{rand: rand}
}

// InitSender implements OT.
func (d *DH) InitSender(io IO) error {
	d.io = io
	return nil
}

// InitReceiver implements OT.
func (d *DH) InitReceiver(io IO) error {
	d.io = io
	return nil
}

// Send runs one Bellare–Micali transfer per wire, per step 2/3 of the
// construction: verify the receiver's (h0, h1) pair, encrypt each
// message under a key derived from its own DH exponent, and send back
// the ephemeral public values and ciphertexts.
func (d *DH) Send(wires []Wire) error {
	for _, w := range wires {
		if err := d.sendOne(w); err != nil {
			return err
		}
	}
	return nil
}

func (d *DH) sendOne(w Wire) error {
	h0Bytes, err := d.io.ReceiveData()
	if err != nil {
		return err
	}
	h1Bytes, err := d.io.ReceiveData()
	if err != nil {
		return err
	}
	h0, err := elementFromBytes(h0Bytes)
	if err != nil {
		return err
	}
	h1, err := elementFromBytes(h1Bytes)
	if err != nil {
		return err
	}

	check := new(big.Int).Mul(h0, h1)
	check.Mod(check, groupP)
	if check.Cmp(groupC) != 0 {
		return FailureError{Reason: "h0*h1 != C"}
	}

	hs := [2]*big.Int{h0, h1}
	msgs := [2]Message{w.M0, w.M1}

	for i := 0; i < 2; i++ {
		yi, err := randExponent(d.rand)
		if err != nil {
			return FailureError{Reason: err.Error()}
		}
		gyi := new(big.Int).Exp(groupG, yi, groupP)
		Ki := new(big.Int).Exp(hs[i], yi, groupP)
		trace(i, "computed K_i from h_i^y_i")
		key, err := deriveKey(Ki)
		if err != nil {
			return err
		}
		ct, nonce, err := encrypt(key, msgs[i])
		if err != nil {
			return err
		}
		if err := d.io.SendData(elementBytes(gyi)); err != nil {
			return err
		}
		if err := d.io.SendData(nonce); err != nil {
			return err
		}
		if err := d.io.SendData(ct); err != nil {
			return err
		}
	}
	return d.io.Flush()
}

// Receive runs one Bellare–Micali transfer per flag, per step 1/3 of
// the construction.
func (d *DH) Receive(flags []bool) ([]Message, error) {
	result := make([]Message, len(flags))
	for i, c := range flags {
		m, err := d.receiveOne(c)
		if err != nil {
			return nil, err
		}
		result[i] = m
	}
	return result, nil
}

func (d *DH) receiveOne(c bool) (Message, error) {
	x, err := randExponent(d.rand)
	if err != nil {
		return nil, FailureError{Reason: err.Error()}
	}
	gx := new(big.Int).Exp(groupG, x, groupP)

	gxInv := new(big.Int).ModInverse(gx, groupP)
	if gxInv == nil {
		return nil, FailureError{Reason: "g^x not invertible mod p"}
	}
	other := new(big.Int).Mul(groupC, gxInv)
	other.Mod(other, groupP)

	var h0, h1 *big.Int
	if c {
		h0, h1 = other, gx
	} else {
		h0, h1 = gx, other
	}

	if err := d.io.SendData(elementBytes(h0)); err != nil {
		return nil, err
	}
	if err := d.io.SendData(elementBytes(h1)); err != nil {
		return nil, err
	}
	if err := d.io.Flush(); err != nil {
		return nil, err
	}

	var gy0, gy1 *big.Int
	var nonce0, nonce1, ct0, ct1 []byte
	for i := 0; i < 2; i++ {
		gyBytes, err := d.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		gy, err := elementFromBytes(gyBytes)
		if err != nil {
			return nil, err
		}
		nonce, err := d.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		ct, err := d.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			gy0, nonce0, ct0 = gy, nonce, ct
		} else {
			gy1, nonce1, ct1 = gy, nonce, ct
		}
	}

	var gySelected *big.Int
	var nonceSelected, ctSelected []byte
	if c {
		gySelected, nonceSelected, ctSelected = gy1, nonce1, ct1
	} else {
		gySelected, nonceSelected, ctSelected = gy0, nonce0, ct0
	}

	Kc := new(big.Int).Exp(gySelected, x, groupP)
	trace(0, "derived K_c from (g^y_c)^x")
	key, err := deriveKey(Kc)
	if err != nil {
		return nil, err
	}
	pt, err := decrypt(key, nonceSelected, ctSelected)
	if err != nil {
		return nil, FailureError{Reason: fmt.Sprintf("decrypt: %s", err)}
	}
	return Message(pt), nil
}

// deriveKey turns a raw DH shared secret into a 32-byte AES-256-GCM
// key via HKDF-SHA256, per the design's KDF resolution.
func deriveKey(shared *big.Int) ([]byte, error) {
	kdf := hkdf.New(sha256.New, shared.Bytes(), nil, []byte("yaogc/ot/v1/kdf"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, FailureError{Reason: err.Error()}
	}
	return key, nil
}

func encrypt(key []byte, msg Message) (ciphertext, nonce []byte, err error) {
	aead, err := newAESGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, FailureError{Reason: err.Error()}
	}
	ciphertext = aead.Seal(nil, nonce, msg, nil)
	return ciphertext, nonce, nil
}

func decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAESGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, FailureError{Reason: err.Error()}
	}
	return cipher.NewGCM(block)
}
