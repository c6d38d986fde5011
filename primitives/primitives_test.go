package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qash-finance/qash-sub002/primitives"
)

func TestNormalizeHex(t *testing.T) {
	req := require.New(t)

	n, err := primitives.NormalizeHex("0xABC")
	req.NoError(err)
	req.Len(n, 66)
	req.Equal("0x"+repeat('0', 61)+"abc", n)

	n2, err := primitives.NormalizeHex("  abc ")
	req.NoError(err)
	req.Equal(n, n2)
	req.True(primitives.EqualHex("0x0abc", "ABC"))

	_, err = primitives.NormalizeHex("0xzz")
	req.ErrorIs(err, primitives.ErrInvalidHex)

	_, err = primitives.NormalizeHex("0x" + repeat('1', 65))
	req.ErrorIs(err, primitives.ErrInvalidHex)
}

func TestWordHexRoundTrip(t *testing.T) {
	req := require.New(t)

	w := primitives.Word{1, 2, 3, primitives.NewFelt(primitives.Modulus + 5)}
	req.Equal(primitives.Felt(5), w[3])

	parsed, err := primitives.WordFromHex(w.Hex())
	req.NoError(err)
	req.Equal(w, parsed)

	// non-canonical element
	_, err = primitives.WordFromHex("0x" + repeat('f', 64))
	req.Error(err)
}

func TestBlake2bHasherDeterministic(t *testing.T) {
	req := require.New(t)
	h := primitives.NewBlake2bHasher()

	a := h.HashElements([]primitives.Felt{1, 2, 3})
	b := h.HashElements([]primitives.Felt{1, 2, 3})
	c := h.HashElements([]primitives.Felt{3, 2, 1})
	req.Equal(a, b)
	req.NotEqual(a, c)
	for _, f := range a {
		req.True(f.IsCanonical())
	}
	req.Equal(primitives.Merge(h, a, c), h.HashElements(append(a.Felts(), c.Felts()...)))
}

func TestPackU32Felts(t *testing.T) {
	req := require.New(t)

	req.Equal([]primitives.Felt{0x04030201, 0x0605}, primitives.PackU32Felts([]byte{1, 2, 3, 4, 5, 6}))
	req.Empty(primitives.PackU32Felts(nil))
}

func TestEncodeEcdsaAdvice(t *testing.T) {
	req := require.New(t)

	pk := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	sig := []byte{3, 0, 0, 0}
	req.Equal([]primitives.Felt{3, 2, 1}, primitives.EncodeEcdsaAdvice(pk, sig))
}

func TestDecodeEcdsaAdvice(t *testing.T) {
	req := require.New(t)

	signer, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)
	sig, err := signer.Sign(primitives.Word{1, 2, 3, 4})
	req.NoError(err)

	publicKey, signature, err := primitives.DecodeEcdsaAdvice(primitives.EncodeEcdsaAdvice(signer.PublicKey(), sig.Bytes()))
	req.NoError(err)
	req.Equal(signer.PublicKey(), publicKey)
	req.Equal(sig.Bytes(), signature)

	_, _, err = primitives.DecodeEcdsaAdvice([]primitives.Felt{1, 2, 3})
	req.ErrorIs(err, primitives.ErrMalformedSignature)

	value := primitives.EncodeEcdsaAdvice(signer.PublicKey(), sig.Bytes())
	value[0] = primitives.Felt(1) << 40
	_, _, err = primitives.DecodeEcdsaAdvice(value)
	req.ErrorIs(err, primitives.ErrMalformedSignature)
}

func TestSignatureVariants(t *testing.T) {
	req := require.New(t)

	falcon := primitives.NewFalconSignature([]byte{9, 9})
	req.Equal([]byte{0, 9, 9}, falcon.Serialize())

	ecdsa := primitives.NewEcdsaSignature([]byte{7}, []byte{1})
	req.Equal([]byte{1, 7}, ecdsa.Serialize())

	decoded, err := primitives.DeserializeSignature(ecdsa.Serialize(), []byte{1})
	req.NoError(err)
	req.Equal(primitives.SchemeEcdsa, decoded.Scheme())
	req.Equal([]byte{7}, decoded.Bytes())

	_, err = primitives.DeserializeSignature([]byte{5, 1}, nil)
	req.ErrorIs(err, primitives.ErrUnknownScheme)

	_, err = primitives.NewEcdsaSignature([]byte{7}, nil).AdviceValue(primitives.Word{})
	req.ErrorIs(err, primitives.ErrMissingPublicKey)

	_, err = primitives.ParseScheme("rsa")
	req.ErrorIs(err, primitives.ErrUnknownScheme)
}

func TestEcdsaSignerAndCommitment(t *testing.T) {
	req := require.New(t)
	h := primitives.NewBlake2bHasher()

	signer, err := primitives.GenerateEcdsaSigner()
	req.NoError(err)

	msg := h.HashElements([]primitives.Felt{42})
	sig, err := signer.Sign(msg)
	req.NoError(err)
	req.Len(sig.Bytes(), primitives.EcdsaSignatureLen)
	req.True(primitives.VerifyEcdsa(signer.PublicKey(), msg, sig.Bytes()))
	req.False(primitives.VerifyEcdsa(signer.PublicKey(), h.HashElements([]primitives.Felt{43}), sig.Bytes()))

	commitment, ok := primitives.DeriveEcdsaCommitment(h, signer.PublicKey())
	req.True(ok)
	req.Equal(signer.Commitment(h), commitment)

	_, ok = primitives.DeriveEcdsaCommitment(h, []byte{1, 2, 3})
	req.False(ok)

	restored, err := primitives.EcdsaSignerFromHex(signer.PrivateKeyHex())
	req.NoError(err)
	req.Equal(signer.PublicKeyHex(), restored.PublicKeyHex())

	parsed, err := primitives.SignatureFromHex(
		"0x"+hexOf(sig.Serialize()), primitives.SchemeEcdsa, signer.PublicKeyHex(),
	)
	req.NoError(err)
	req.Equal(sig.Bytes(), parsed.Bytes())
}

func TestAdviceMapKeysOrdered(t *testing.T) {
	req := require.New(t)

	m := primitives.NewAdviceMap()
	m.Insert(primitives.Word{2}, []primitives.Felt{1})
	m.Insert(primitives.Word{1}, []primitives.Felt{2})
	m.Insert(primitives.Word{2}, []primitives.Felt{3})

	req.Equal(2, m.Len())
	req.Equal([]primitives.Word{{1}, {2}}, m.Keys())
	v, ok := m.Get(primitives.Word{2})
	req.True(ok)
	req.Equal([]primitives.Felt{3}, v)
}

func repeat(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func hexOf(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0xf])
	}
	return string(out)
}
