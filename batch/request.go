package batch

import (
	"encoding/binary"

	"github.com/qash-finance/qash-sub002/primitives"
)

const requestVersion byte = 1

// TransactionRequest is the request handed to the ledger for execution: the
// output notes, the auth argument (the auth salt) and the advice map.
type TransactionRequest struct {
	OutputNotes []Note
	AuthArg     primitives.Word
	Advice      *primitives.AdviceMap
}

// OutputNotesCommitment commits to the ordered list of output notes.
func (r *TransactionRequest) OutputNotesCommitment(h primitives.Hasher) primitives.Word {
	if len(r.OutputNotes) == 0 {
		return primitives.ZeroWord
	}
	felts := make([]primitives.Felt, 0, 4*len(r.OutputNotes))
	for _, note := range r.OutputNotes {
		felts = append(felts, note.Commitment(h).Felts()...)
	}
	return h.HashElements(felts)
}

// Bytes returns a deterministic encoding of the request. Advice entries are
// written in key order.
func (r *TransactionRequest) Bytes() []byte {
	var w encoder
	w.byte(requestVersion)
	w.u32(uint32(len(r.OutputNotes)))
	for _, note := range r.OutputNotes {
		w.word(note.Recipient.SerialNumber)
		w.word(note.Recipient.ScriptRoot)
		w.felts(note.Recipient.Inputs)
		w.u32(uint32(len(note.Assets)))
		for _, asset := range note.Assets {
			w.word(asset.Word())
		}
		w.word(note.Metadata.Word())
	}
	w.word(r.AuthArg)
	w.u32(uint32(r.Advice.Len()))
	for _, key := range r.Advice.Keys() {
		value, _ := r.Advice.Get(key)
		w.word(key)
		w.felts(value)
	}
	return w.buf
}

type encoder struct {
	buf []byte
}

func (e *encoder) byte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) felt(f primitives.Felt) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, f.Uint64())
}

func (e *encoder) word(w primitives.Word) {
	for _, f := range w {
		e.felt(f)
	}
}

func (e *encoder) felts(fs []primitives.Felt) {
	e.u32(uint32(len(fs)))
	for _, f := range fs {
		e.felt(f)
	}
}
