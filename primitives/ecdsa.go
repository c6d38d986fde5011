package primitives

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// r || s || v
	EcdsaSignatureLen       = 65
	EcdsaTaggedSignatureLen = EcdsaSignatureLen + 1

	compressedPubKeyLen   = 33
	uncompressedPubKeyLen = 65
)

func parseSecp256k1PublicKey(publicKey []byte) (*ecdsa.PublicKey, error) {
	switch len(publicKey) {
	case compressedPubKeyLen:
		return crypto.DecompressPubkey(publicKey)
	case uncompressedPubKeyLen:
		return crypto.UnmarshalPubkey(publicKey)
	}
	return nil, errors.New("unexpected public key length")
}

// DeriveEcdsaCommitment returns the signer commitment of a secp256k1 public key:
// the hash of its packed compressed encoding. A malformed key yields false.
func DeriveEcdsaCommitment(h Hasher, publicKey []byte) (Word, bool) {
	pub, err := parseSecp256k1PublicKey(publicKey)
	if err != nil {
		return Word{}, false
	}
	return h.HashElements(PackU32Felts(crypto.CompressPubkey(pub))), true
}

// VerifyEcdsa checks an r || s || v signature over a word message.
func VerifyEcdsa(publicKey []byte, message Word, signature []byte) bool {
	if len(signature) < EcdsaSignatureLen-1 {
		return false
	}
	pub, err := parseSecp256k1PublicKey(publicKey)
	if err != nil {
		return false
	}
	return crypto.VerifySignature(crypto.CompressPubkey(pub), message.Bytes(), signature[:EcdsaSignatureLen-1])
}

// EcdsaSigner signs word messages with a secp256k1 key. The 32 message bytes
// are signed directly as the digest.
type EcdsaSigner struct {
	key *ecdsa.PrivateKey
}

func NewEcdsaSigner(key *ecdsa.PrivateKey) *EcdsaSigner {
	return &EcdsaSigner{key: key}
}

func GenerateEcdsaSigner() (*EcdsaSigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return NewEcdsaSigner(key), nil
}

func EcdsaSignerFromHex(privateKeyHex string) (*EcdsaSigner, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(privateKeyHex))
	if err != nil {
		return nil, err
	}
	return NewEcdsaSigner(key), nil
}

func (s *EcdsaSigner) PublicKey() []byte {
	return crypto.CompressPubkey(&s.key.PublicKey)
}

func (s *EcdsaSigner) PublicKeyHex() string {
	return "0x" + hex.EncodeToString(s.PublicKey())
}

func (s *EcdsaSigner) PrivateKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSA(s.key))
}

func (s *EcdsaSigner) Commitment(h Hasher) Word {
	commitment, _ := DeriveEcdsaCommitment(h, s.PublicKey())
	return commitment
}

func (s *EcdsaSigner) Sign(message Word) (EcdsaSignature, error) {
	raw, err := crypto.Sign(message.Bytes(), s.key)
	if err != nil {
		return EcdsaSignature{}, err
	}
	return NewEcdsaSignature(raw, s.PublicKey()), nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
