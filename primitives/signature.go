package primitives

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

type Scheme string

const (
	SchemeFalcon Scheme = "falcon"
	SchemeEcdsa  Scheme = "ecdsa"
)

// serialized signature tags
const (
	tagFalcon byte = 0
	tagEcdsa  byte = 1
)

var (
	ErrUnknownScheme      = errors.New("unknown signature scheme")
	ErrMissingPublicKey   = errors.New("ecdsa signature requires a public key")
	ErrMalformedSignature = errors.New("malformed signature")
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeFalcon:
		return SchemeFalcon, nil
	case SchemeEcdsa:
		return SchemeEcdsa, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

// Signature is a cosigner or PSM signature over a transaction commitment.
// The set of variants is closed: FalconSignature and EcdsaSignature.
type Signature interface {
	Scheme() Scheme
	// Bytes returns the raw signature without the scheme tag.
	Bytes() []byte
	// Serialize returns the tagged wire form.
	Serialize() []byte
	// AdviceValue returns the elements the on-chain verifier reads for this signature.
	AdviceValue(message Word) ([]Felt, error)

	isSignature()
}

type FalconSignature struct {
	raw []byte
}

func NewFalconSignature(raw []byte) FalconSignature {
	return FalconSignature{raw: append([]byte(nil), raw...)}
}

func (s FalconSignature) Scheme() Scheme { return SchemeFalcon }

func (s FalconSignature) Bytes() []byte { return append([]byte(nil), s.raw...) }

func (s FalconSignature) Serialize() []byte {
	return append([]byte{tagFalcon}, s.raw...)
}

// AdviceValue returns the prepared form: the message elements followed by the
// packed signature.
func (s FalconSignature) AdviceValue(message Word) ([]Felt, error) {
	if len(s.raw) == 0 {
		return nil, ErrMalformedSignature
	}
	return append(message.Felts(), PackU32Felts(s.raw)...), nil
}

func (FalconSignature) isSignature() {}

type EcdsaSignature struct {
	raw       []byte
	publicKey []byte
}

func NewEcdsaSignature(raw, publicKey []byte) EcdsaSignature {
	return EcdsaSignature{
		raw:       append([]byte(nil), raw...),
		publicKey: append([]byte(nil), publicKey...),
	}
}

func (s EcdsaSignature) Scheme() Scheme { return SchemeEcdsa }

func (s EcdsaSignature) Bytes() []byte { return append([]byte(nil), s.raw...) }

func (s EcdsaSignature) PublicKey() []byte { return append([]byte(nil), s.publicKey...) }

func (s EcdsaSignature) Serialize() []byte {
	return append([]byte{tagEcdsa}, s.raw...)
}

func (s EcdsaSignature) AdviceValue(_ Word) ([]Felt, error) {
	if len(s.publicKey) == 0 {
		return nil, ErrMissingPublicKey
	}
	if len(s.raw) == 0 {
		return nil, ErrMalformedSignature
	}
	return EncodeEcdsaAdvice(s.publicKey, s.raw), nil
}

func (EcdsaSignature) isSignature() {}

// DeserializeSignature parses the tagged wire form. The public key is only used
// for ECDSA signatures.
func DeserializeSignature(b []byte, publicKey []byte) (Signature, error) {
	if len(b) < 2 {
		return nil, ErrMalformedSignature
	}
	switch b[0] {
	case tagFalcon:
		return NewFalconSignature(b[1:]), nil
	case tagEcdsa:
		return NewEcdsaSignature(b[1:], publicKey), nil
	}
	return nil, fmt.Errorf("%w: tag %d", ErrUnknownScheme, b[0])
}

// SignatureFromHex builds a signature from its raw hex bytes. An explicit tag
// byte matching the scheme is tolerated.
func SignatureFromHex(sigHex string, scheme Scheme, publicKeyHex string) (Signature, error) {
	raw, err := DecodeHexBytes(sigHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(raw) == 0 {
		return nil, ErrMalformedSignature
	}
	switch scheme {
	case SchemeFalcon:
		return NewFalconSignature(raw), nil
	case SchemeEcdsa:
		if len(raw) == EcdsaTaggedSignatureLen && raw[0] == tagEcdsa {
			raw = raw[1:]
		}
		var publicKey []byte
		if publicKeyHex != "" {
			if publicKey, err = DecodeHexBytes(publicKeyHex); err != nil {
				return nil, fmt.Errorf("%w: public key: %v", ErrMalformedSignature, err)
			}
		}
		return NewEcdsaSignature(raw, publicKey), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

// DecodeHexBytes decodes a hex string with or without 0x prefix.
func DecodeHexBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}
