package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Levels(t *testing.T) {
	req := require.New(t)

	core, logs := observer.New(zap.InfoLevel)
	l := FromZap(zap.New(core)).Named("syncer")

	l.Log("synced %d accounts", 2)
	l.Warn("lagging")
	l.Error("failed: %s", "boom")

	entries := logs.All()
	req.Len(entries, 3)
	req.Equal("synced 2 accounts", entries[0].Message)
	req.Equal("syncer", entries[0].LoggerName)
	req.Equal(zap.WarnLevel, entries[1].Level)
	req.Equal("failed: boom", entries[2].Message)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("alice", "loud")
	require.Error(t, err)

	l, err := NewLogger("alice", "")
	require.NoError(t, err)
	require.NotNil(t, l)
}
