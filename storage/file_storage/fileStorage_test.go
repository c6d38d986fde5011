package file_storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/qash-finance/qash-sub002/storage"
)

func TestFileStorage_Send(t *testing.T) {
	const N = 10
	req := require.New(t)

	testFile := filepath.Join(t.TempDir(), "relay_log")
	fs, err := NewFileStorage(testFile, "")
	req.NoError(err)
	defer fs.Close()

	msgs := make([]storage.Message, 0, N)
	for i := 0; i < N; i++ {
		msgs = append(msgs, storage.Message{
			AccountID: "0xaa",
			Event:     "event_signature_received",
			Data:      frand.Bytes(10),
			Signature: frand.Bytes(10),
		})
	}
	msgs[0].ID = "fixed-id"

	req.NoError(fs.Send(msgs...))
	req.Equal("fixed-id", msgs[0].ID)
	for i, msg := range msgs {
		req.Equal(uint64(i), msg.Offset)
		req.NotEmpty(msg.ID)
	}

	offsetMsgs, err := fs.GetMessages(0)
	req.NoError(err)
	req.Equal(msgs, offsetMsgs)

	tail, err := fs.GetMessages(N - 3)
	req.NoError(err)
	req.Equal(msgs[N-3:], tail)

	empty, err := fs.GetMessages(N)
	req.NoError(err)
	req.Empty(empty)
}

func TestFileStorage_Reopen(t *testing.T) {
	req := require.New(t)

	testFile := filepath.Join(t.TempDir(), "relay_log")
	fs, err := NewFileStorage(testFile, "")
	req.NoError(err)
	req.NoError(fs.Send(storage.Message{Event: "a"}, storage.Message{Event: "b"}))
	req.NoError(fs.Close())

	reopened, err := NewFileStorage(testFile, "")
	req.NoError(err)
	defer reopened.Close()

	next := storage.Message{Event: "c"}
	req.NoError(reopened.Send(next))

	msgs, err := reopened.GetMessages(0)
	req.NoError(err)
	req.Len(msgs, 3)
	req.Equal(uint64(2), msgs[2].Offset)
	req.Equal("c", msgs[2].Event)
}
