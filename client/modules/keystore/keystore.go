package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/qash-finance/qash-sub002/primitives"
)

const (
	secretsKey = "secrets"
)

var ErrKeyNotFound = errors.New("key pair not found")

type KeyStore interface {
	PutKeys(name string, keyPair *KeyPair) error
	LoadKeys(name string) (*KeyPair, error)
	Close() error
}

// LevelDBKeyStore keeps hot secp256k1 keys of the node: the cosigner key and,
// for a node acting as PSM, the acknowledgment key.
// The target state is an encrypted storage with password authentication.
type LevelDBKeyStore struct {
	mu         sync.Mutex
	keystoreDb *leveldb.DB
}

func NewLevelDBKeyStore(keystorePath string) (*LevelDBKeyStore, error) {
	db, err := leveldb.OpenFile(keystorePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}

	keystore := &LevelDBKeyStore{
		keystoreDb: db,
	}

	if err := keystore.initJsonKey(secretsKey, map[string]*KeyPair{}); err != nil {
		return nil, fmt.Errorf("failed to init %s storage: %w", secretsKey, err)
	}

	return keystore, nil
}

func (s *LevelDBKeyStore) PutKeys(name string, keyPair *KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyPairs, err := s.load()
	if err != nil {
		return err
	}

	keyPairs[name] = keyPair

	keyPairsBz, err := json.Marshal(keyPairs)
	if err != nil {
		return fmt.Errorf("failed to marshal key pair: %w", err)
	}

	if err = s.keystoreDb.Put([]byte(secretsKey), keyPairsBz, nil); err != nil {
		return fmt.Errorf("failed to put key pairs: %w", err)
	}

	return nil
}

func (s *LevelDBKeyStore) LoadKeys(name string) (*KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyPairs, err := s.load()
	if err != nil {
		return nil, err
	}

	keyPair, ok := keyPairs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}

	return keyPair, nil
}

func (s *LevelDBKeyStore) Close() error {
	return s.keystoreDb.Close()
}

func (s *LevelDBKeyStore) load() (map[string]*KeyPair, error) {
	bz, err := s.keystoreDb.Get([]byte(secretsKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var keyPairs = map[string]*KeyPair{}
	if err := json.Unmarshal(bz, &keyPairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key pairs: %w", err)
	}

	return keyPairs, nil
}

func (s *LevelDBKeyStore) initJsonKey(key string, data interface{}) error {
	if _, err := s.keystoreDb.Get([]byte(key), nil); err != nil {
		dataBz, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal storage structure: %w", err)
		}
		err = s.keystoreDb.Put([]byte(key), dataBz, nil)
		if err != nil {
			return fmt.Errorf("failed to init state: %w", err)
		}
	}

	return nil
}

// KeyPair is a secp256k1 key stored as its raw 32-byte secret.
type KeyPair struct {
	Priv []byte
}

func NewKeyPair() (*KeyPair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &KeyPair{Priv: crypto.FromECDSA(key)}, nil
}

func (p *KeyPair) Signer() (*primitives.EcdsaSigner, error) {
	key, err := crypto.ToECDSA(p.Priv)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	return primitives.NewEcdsaSigner(key), nil
}

// GetAddr returns the compressed public key hex, used as the sender address in the relay log.
func (p *KeyPair) GetAddr() (string, error) {
	signer, err := p.Signer()
	if err != nil {
		return "", err
	}
	return signer.PublicKeyHex(), nil
}
