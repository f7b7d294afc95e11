//
// gate.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/tnystrand/yaogc/circuit"
)

// nonceSize is the GCM standard nonce length.
const nonceSize = 12

// Row is one entry of a garbled gate's table: the double-encrypted
// payload plus the two AEAD nonces used to produce it, row order
// indexed by the externally visible encrypted input bits (idx/idxUnary
// below).
type Row struct {
	NonceOuter [nonceSize]byte
	NonceInner [nonceSize]byte
	Cipher     []byte
}

// GarbledGate is a single gate's encrypted truth table: 4 rows for a
// binary gate, 2 for NOT.
type GarbledGate struct {
	Rows []Row
}

// idx returns the table row index for a binary gate given the two
// externally visible encrypted input bits, ordered (0,0) (0,1) (1,0)
// (1,1).
func idx(eu, ev bool) int {
	i := 0
	if eu {
		i |= 2
	}
	if ev {
		i |= 1
	}
	return i
}

// idxUnary returns the table row index for a NOT gate given its single
// externally visible encrypted input bit.
func idxUnary(eu bool) int {
	if eu {
		return 1
	}
	return 0
}

// ad builds the AEAD associated data for one encryption layer of one
// gate row: gate id, row index, and a domain-separation tag
// distinguishing the outer (keyed by input u) layer from the inner
// (keyed by input v) layer.
func ad(gate circuit.Wire, row int, layer string) []byte {
	buf := make([]byte, 0, 4+1+len(layer))
	var idBuf [4]byte
	binary.BigEndian.PutUint32(idBuf[:], uint32(gate))
	buf = append(buf, idBuf[:]...)
	buf = append(buf, byte(row))
	buf = append(buf, layer...)
	return buf
}

func newGCM(key Label) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, CryptoFailureError{Reason: err.Error()}
	}
	return cipher.NewGCM(block)
}

// encryptRow seals payload under two nested AES-GCM layers: the inner
// layer keyed by keyV, the outer by keyU. Decryption (decryptRow)
// peels the layers in the opposite order: outer (keyU) first, then
// inner (keyV).
func encryptRow(keyU, keyV Label, gate circuit.Wire, row int, payload []byte) (Row, error) {
	var r Row

	innerAEAD, err := newGCM(keyV)
	if err != nil {
		return r, err
	}
	if _, err := io.ReadFull(rand.Reader, r.NonceInner[:]); err != nil {
		return r, CryptoFailureError{Reason: err.Error()}
	}
	inner := innerAEAD.Seal(nil, r.NonceInner[:], payload, ad(gate, row, "inner"))

	outerAEAD, err := newGCM(keyU)
	if err != nil {
		return r, err
	}
	if _, err := io.ReadFull(rand.Reader, r.NonceOuter[:]); err != nil {
		return r, CryptoFailureError{Reason: err.Error()}
	}
	r.Cipher = outerAEAD.Seal(nil, r.NonceOuter[:], inner, ad(gate, row, "outer"))

	return r, nil
}

// decryptRow reverses encryptRow: peels the outer layer (keyU) then
// the inner layer (keyV), returning the original payload.
func decryptRow(keyU, keyV Label, gate circuit.Wire, row int, r Row) ([]byte, error) {
	outerAEAD, err := newGCM(keyU)
	if err != nil {
		return nil, err
	}
	inner, err := outerAEAD.Open(nil, r.NonceOuter[:], r.Cipher, ad(gate, row, "outer"))
	if err != nil {
		return nil, MalformedGarbledTableError{Gate: int(gate), Row: row}
	}

	innerAEAD, err := newGCM(keyV)
	if err != nil {
		return nil, err
	}
	payload, err := innerAEAD.Open(nil, r.NonceInner[:], inner, ad(gate, row, "inner"))
	if err != nil {
		return nil, MalformedGarbledTableError{Gate: int(gate), Row: row}
	}
	return payload, nil
}

// encryptRowUnary seals payload under a single AES-GCM layer keyed by
// keyU, for NOT gates which have only one input.
func encryptRowUnary(keyU Label, gate circuit.Wire, row int, payload []byte) (Row, error) {
	var r Row
	aead, err := newGCM(keyU)
	if err != nil {
		return r, err
	}
	if _, err := io.ReadFull(rand.Reader, r.NonceOuter[:]); err != nil {
		return r, CryptoFailureError{Reason: err.Error()}
	}
	r.Cipher = aead.Seal(nil, r.NonceOuter[:], payload, ad(gate, row, "unary"))
	return r, nil
}

func decryptRowUnary(keyU Label, gate circuit.Wire, row int, r Row) ([]byte, error) {
	aead, err := newGCM(keyU)
	if err != nil {
		return nil, err
	}
	payload, err := aead.Open(nil, r.NonceOuter[:], r.Cipher, ad(gate, row, "unary"))
	if err != nil {
		return nil, MalformedGarbledTableError{Gate: int(gate), Row: row}
	}
	return payload, nil
}

// packPayload forms P = key_w ‖ byte(bit), the plaintext packed into
// each table row.
func packPayload(key Label, bit bool) []byte {
	p := make([]byte, LabelSize+1)
	copy(p, key.Bytes())
	if bit {
		p[LabelSize] = 1
	}
	return p
}

// unpackPayload splits a decrypted row payload back into its key and
// bit, the inverse of packPayload.
func unpackPayload(p []byte) (Label, bool, error) {
	var key Label
	if len(p) != LabelSize+1 {
		return key, false, CryptoFailureError{Reason: "decrypted row has wrong length"}
	}
	copy(key[:], p[:LabelSize])
	return key, p[LabelSize] != 0, nil
}

// OTMessages returns the two payloads offered for this wire's key pair
// over Oblivious Transfer: key‖encbit for plaintext bit 0 and bit 1,
// in the same key‖bit layout a garbled gate's rows use, so the
// Evaluator can unpack an OT result with WireValueFromBytes below.
func (w WireKeys) OTMessages() (m0, m1 []byte) {
	return packPayload(w.K0, w.Enc(false)), packPayload(w.K1, w.Enc(true))
}

// WireValueFromBytes unpacks a key‖bit payload (an OT result, or a
// directly sent Garbler input) into a WireValue.
func WireValueFromBytes(data []byte) (WireValue, error) {
	key, bit, err := unpackPayload(data)
	if err != nil {
		return WireValue{}, err
	}
	return WireValue{Key: key, E: bit}, nil
}
