package storage

import (
	"bytes"
	"encoding/binary"
)

// Message is an entry of the append-only relay log.
type Message struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	ProposalID string `json:"proposal_id"`
	Offset     uint64 `json:"offset"`
	Event      string `json:"event"`
	Data       []byte `json:"data"`
	Signature  []byte `json:"signature"`
	SenderAddr string `json:"sender"`
}

// SigningPayload returns the bytes covered by the message signature.
// Offset and Signature are excluded, both are set after signing.
func (m *Message) SigningPayload() []byte {
	var buf bytes.Buffer
	for _, field := range [][]byte{
		[]byte(m.ID),
		[]byte(m.AccountID),
		[]byte(m.ProposalID),
		[]byte(m.Event),
		m.Data,
		[]byte(m.SenderAddr),
	} {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(field)))
		buf.Write(field)
	}
	return buf.Bytes()
}

type Storage interface {
	Send(messages ...Message) error
	GetMessages(offset uint64) ([]Message, error)
	Close() error
}
