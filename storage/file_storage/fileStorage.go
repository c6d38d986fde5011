package file_storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/fslock"

	"github.com/qash-finance/qash-sub002/storage"
)

var _ storage.Storage = (*FileStorage)(nil)

const (
	// Proposal init messages carry the summary and recipients list
	maxLineSize = 4 * 1024 * 1024
)

// FileStorage is an append-only relay log shared by processes on one host.
// Each line is one JSON encoded message, the line number is its offset.
type FileStorage struct {
	mu       sync.Mutex
	lockFile *fslock.Lock
	dataFile *os.File
}

func countLines(r io.Reader) (uint64, error) {
	var count uint64
	scanner := newScanner(r)

	for scanner.Scan() {
		count++
	}

	return count, scanner.Err()
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// NewFileStorage opens (or creates) the data file. When lockFilename is empty
// the lock file is placed next to the data file.
func NewFileStorage(filename, lockFilename string) (*FileStorage, error) {
	if lockFilename == "" {
		lockFilename = filename + ".lock"
	}

	dataFile, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open a data file: %w", err)
	}

	return &FileStorage{
		lockFile: fslock.New(lockFilename),
		dataFile: dataFile,
	}, nil
}

func (fs *FileStorage) send(m storage.Message) (storage.Message, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	// otherwise countLines will return zero
	if _, err := fs.dataFile.Seek(0, io.SeekStart); err != nil {
		return m, fmt.Errorf("failed to seek to the start of a data file: %w", err)
	}
	offset, err := countLines(fs.dataFile)
	if err != nil {
		return m, fmt.Errorf("failed to count messages: %w", err)
	}
	m.Offset = offset

	data, err := json.Marshal(m)
	if err != nil {
		return m, fmt.Errorf("failed to marshal a message %s: %w", m.ID, err)
	}

	if _, err = fmt.Fprintln(fs.dataFile, string(data)); err != nil {
		return m, fmt.Errorf("failed to write a message to a data file: %w", err)
	}
	return m, nil
}

// Send appends messages, setting their offsets (and IDs when missing) in place.
func (fs *FileStorage) Send(msgs ...storage.Message) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.lockFile.Lock(); err != nil {
		return fmt.Errorf("failed to lock a file: %w", err)
	}
	defer fs.lockFile.Unlock()

	var err error
	for i, m := range msgs {
		if msgs[i], err = fs.send(m); err != nil {
			return err
		}
	}
	return nil
}

// GetMessages returns messages starting from the given offset.
func (fs *FileStorage) GetMessages(offset uint64) ([]storage.Message, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := fs.dataFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to the start of a data file: %w", err)
	}

	var msgs []storage.Message
	scanner := newScanner(fs.dataFile)
	for scanner.Scan() {
		if offset > 0 {
			offset--
			continue
		}

		var msg storage.Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal a message %s: %w", scanner.Text(), err)
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read a data file: %w", err)
	}
	return msgs, nil
}

func (fs *FileStorage) Close() error {
	return fs.dataFile.Close()
}
