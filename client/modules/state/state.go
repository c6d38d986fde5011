package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

const (
	OffsetKey = "offset"
)

// State is the node's local key/value state: the relay log offset and the
// repositories built on top of it.
type State interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error

	SaveOffset(uint64) error
	LoadOffset() (uint64, error)

	Close() error
}

type LevelDBState struct {
	sync.Mutex
	stateDb     *leveldb.DB
	topic       string
	stateDbPath string
}

func NewLevelDBState(stateDbPath string, topic string) (*LevelDBState, error) {
	db, err := leveldb.OpenFile(stateDbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open stateDB: %w", err)
	}

	return &LevelDBState{
		stateDb:     db,
		topic:       topic,
		stateDbPath: stateDbPath,
	}, nil
}

// Get returns nil without error for missing keys.
func (s *LevelDBState) Get(key string) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	value, err := s.stateDb.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get value with key {%s} from leveldb storage: %w", key, err)
	}
	return value, nil
}

func (s *LevelDBState) Set(key string, value []byte) error {
	s.Lock()
	defer s.Unlock()

	if err := s.stateDb.Put([]byte(key), value, nil); err != nil {
		return fmt.Errorf("failed to save value with key %s: %w", key, err)
	}
	return nil
}

func (s *LevelDBState) Delete(key string) error {
	s.Lock()
	defer s.Unlock()

	err := s.stateDb.Delete([]byte(key), nil)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("failed to delete value with key {%s}: %w", key, err)
	}
	return nil
}

func (s *LevelDBState) SaveOffset(offset uint64) error {
	bz := make([]byte, 8)
	binary.LittleEndian.PutUint64(bz, offset)

	if err := s.Set(MakeCompositeKeyString(s.topic, OffsetKey), bz); err != nil {
		return fmt.Errorf("failed to set offset: %w", err)
	}

	return nil
}

// LoadOffset returns zero when no offset was saved yet.
func (s *LevelDBState) LoadOffset() (uint64, error) {
	bz, err := s.Get(MakeCompositeKeyString(s.topic, OffsetKey))
	if err != nil {
		return 0, fmt.Errorf("failed to read offset: %w", err)
	}
	if len(bz) != 8 {
		return 0, nil
	}

	return binary.LittleEndian.Uint64(bz), nil
}

func (s *LevelDBState) Close() error {
	s.Lock()
	defer s.Unlock()

	return s.stateDb.Close()
}

func MakeCompositeKey(prefix, key string) []byte {
	return []byte(MakeCompositeKeyString(prefix, key))
}

func MakeCompositeKeyString(prefix, key string) string {
	return fmt.Sprintf("%s_%s", prefix, key)
}
