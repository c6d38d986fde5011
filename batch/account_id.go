package batch

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/qash-finance/qash-sub002/primitives"
)

const (
	accountIDLen = 15
	// address type byte of a bech32 account address
	addressTypeAccountID byte = 0
	// routing parameters trail the address after this separator
	routingSeparator = "_"
)

// AccountID identifies an account or a faucet by two field elements.
// The low byte of the suffix is always zero.
type AccountID struct {
	Prefix primitives.Felt
	Suffix primitives.Felt
}

func (id AccountID) Bytes() []byte {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], id.Prefix.Uint64())
	binary.BigEndian.PutUint64(buf[8:], id.Suffix.Uint64())
	return buf[:accountIDLen]
}

func (id AccountID) Hex() string {
	return "0x" + hex.EncodeToString(id.Bytes())
}

func (id AccountID) String() string {
	return id.Hex()
}

// Bech32 encodes the id as an address with the given human readable part.
func (id AccountID) Bech32(hrp string) (string, error) {
	data, err := bech32.ConvertBits(append([]byte{addressTypeAccountID}, id.Bytes()...), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, data)
}

func accountIDFromBytes(b []byte) (AccountID, error) {
	if len(b) != accountIDLen {
		return AccountID{}, fmt.Errorf("%w: account id must be %d bytes, got %d", ErrInvalidAddress, accountIDLen, len(b))
	}
	var buf [16]byte
	copy(buf[:], b)
	prefix := binary.BigEndian.Uint64(buf[:8])
	suffix := binary.BigEndian.Uint64(buf[8:])
	if prefix >= primitives.Modulus || suffix >= primitives.Modulus {
		return AccountID{}, fmt.Errorf("%w: account id is not canonical", ErrInvalidAddress)
	}
	return AccountID{Prefix: primitives.Felt(prefix), Suffix: primitives.Felt(suffix)}, nil
}

// ParseAccountID accepts a 0x-prefixed or bare hex account id, or a bech32
// address optionally followed by routing parameters.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AccountID{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x")); err == nil {
		return accountIDFromBytes(raw)
	}

	address := s
	if i := strings.Index(address, routingSeparator); i >= 0 {
		address = address[:i]
	}
	_, data, err := bech32.Decode(address)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if len(raw) < 1+accountIDLen || raw[0] != addressTypeAccountID {
		return AccountID{}, fmt.Errorf("%w: %q is not an account address", ErrInvalidAddress, s)
	}
	return accountIDFromBytes(raw[1 : 1+accountIDLen])
}
