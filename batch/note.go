package batch

import (
	"github.com/qash-finance/qash-sub002/primitives"
)

type NoteType uint8

const (
	NoteTypePrivate NoteType = 2
	NoteTypePublic  NoteType = 1
)

// P2IDScriptRoot is the root of the pay-to-id note script.
var P2IDScriptRoot = primitives.Word{
	0x1f3e9a4c7b2d8e60,
	0x5c8d2a1e9f4b7c36,
	0x2a7f4e1c9d3b8a05,
	0x6e2c9b7a4f1d3e58,
}

type FungibleAsset struct {
	Faucet AccountID
	Amount uint64
}

func (a FungibleAsset) Word() primitives.Word {
	return primitives.Word{
		primitives.NewFelt(a.Amount),
		0,
		a.Faucet.Suffix,
		a.Faucet.Prefix,
	}
}

// NoteTag routes a note to the account it targets.
type NoteTag uint32

func NoteTagForAccount(id AccountID) NoteTag {
	return NoteTag(id.Prefix.Uint64() >> 34)
}

type NoteMetadata struct {
	Sender AccountID
	Type   NoteType
	Tag    NoteTag
}

func (m NoteMetadata) Word() primitives.Word {
	return primitives.Word{
		primitives.NewFelt(m.Sender.Suffix.Uint64() | uint64(m.Type)),
		m.Sender.Prefix,
		primitives.Felt(m.Tag),
		0,
	}
}

type NoteRecipient struct {
	SerialNumber primitives.Word
	ScriptRoot   primitives.Word
	Inputs       []primitives.Felt
}

func (r NoteRecipient) Digest(h primitives.Hasher) primitives.Word {
	serialCommitment := primitives.Merge(h, r.SerialNumber, primitives.ZeroWord)
	scriptCommitment := primitives.Merge(h, serialCommitment, r.ScriptRoot)
	return primitives.Merge(h, scriptCommitment, h.HashElements(r.Inputs))
}

type Note struct {
	Assets    []FungibleAsset
	Metadata  NoteMetadata
	Recipient NoteRecipient
}

func (n Note) assetsCommitment(h primitives.Hasher) primitives.Word {
	felts := make([]primitives.Felt, 0, 4*len(n.Assets))
	for _, asset := range n.Assets {
		felts = append(felts, asset.Word().Felts()...)
	}
	return h.HashElements(felts)
}

func (n Note) ID(h primitives.Hasher) primitives.Word {
	return primitives.Merge(h, n.Recipient.Digest(h), n.assetsCommitment(h))
}

// Commitment binds the note id to its metadata.
func (n Note) Commitment(h primitives.Hasher) primitives.Word {
	return primitives.Merge(h, n.ID(h), n.Metadata.Word())
}

// NewP2IDNote creates a public pay-to-id note. Its inputs are the target
// account suffix and prefix.
func NewP2IDNote(sender, target AccountID, assets []FungibleAsset, serialNumber primitives.Word) Note {
	return Note{
		Assets: assets,
		Metadata: NoteMetadata{
			Sender: sender,
			Type:   NoteTypePublic,
			Tag:    NoteTagForAccount(target),
		},
		Recipient: NoteRecipient{
			SerialNumber: serialNumber,
			ScriptRoot:   P2IDScriptRoot,
			Inputs:       []primitives.Felt{target.Suffix, target.Prefix},
		},
	}
}
