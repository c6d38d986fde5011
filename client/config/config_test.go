package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const testConfigFile = `
username: bob
storage_type: file
file_storage:
  path: /tmp/cosigner_log
sync:
  interval: 3s
psm:
  commitment: "0x01"
accounts:
  - account_id: "0x9a2c1e0f4b5d6e7f8a9b0c1d2e3f40"
    name: treasury
    scheme: ecdsa
    signer_commitments: ["0x01", "0x02", "0x03"]
    threshold:
      base: 2
known_tokens:
  - faucet_id: "0x1122334455667788990011223344aa"
    symbol: USDC
    decimals: 6
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load("", nil)
	req.NoError(err)
	req.Equal("cosigner", cfg.Username)
	req.Equal(StorageTypeFile, cfg.StorageType)
	req.Equal("./cosigner_log", cfg.FileStorageConfig.Path)
	req.Equal(DefaultSyncInterval, cfg.SyncConfig.Interval)
	req.Equal(DefaultRetryDelay, cfg.SyncConfig.RetryDelay)
	req.Equal("localhost:8080", cfg.HttpApiConfig.ListenAddr)
	req.Equal("ecdsa", cfg.PSMConfig.Scheme)
}

func TestLoad_File(t *testing.T) {
	req := require.New(t)

	cfg, err := Load(writeConfig(t, testConfigFile), nil)
	req.NoError(err)
	req.Equal("bob", cfg.Username)
	req.Equal(3*time.Second, cfg.SyncConfig.Interval)
	req.Equal("0x01", cfg.PSMConfig.Commitment)

	req.Len(cfg.Accounts, 1)
	account := cfg.Accounts[0]
	req.Equal("treasury", account.Name)
	req.Equal(2, account.Threshold.Base)
	req.Len(account.SignerCommitments, 3)

	req.Len(cfg.KnownTokens, 1)
	req.Equal(int32(6), cfg.KnownTokens[0].Decimals)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	req := require.New(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("username", "cosigner", "")
	flags.Duration("sync.interval", DefaultSyncInterval, "")
	req.NoError(flags.Parse([]string{"--username=carol", "--sync.interval=1m"}))

	cfg, err := Load(writeConfig(t, testConfigFile), flags)
	req.NoError(err)
	req.Equal("carol", cfg.Username)
	req.Equal(time.Minute, cfg.SyncConfig.Interval)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("COSIGNER_USERNAME", "dave")
	t.Setenv("COSIGNER_SYNC_INTERVAL", "5s")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "dave", cfg.Username)
	require.Equal(t, 5*time.Second, cfg.SyncConfig.Interval)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown storage",
			content: "storage_type: s3\n",
			errMsg:  `unknown storage type "s3"`,
		},
		{
			name:    "kafka without broker",
			content: "storage_type: kafka\n",
			errMsg:  "kafka_storage.broker is required",
		},
		{
			name:    "zero interval",
			content: "sync:\n  interval: 0s\n",
			errMsg:  "sync.interval must be positive",
		},
		{
			name: "threshold above signers",
			content: `accounts:
  - account_id: "0x9a"
    signer_commitments: ["0x01"]
    threshold:
      base: 2
`,
			errMsg: "threshold 2 out of range [1, 1]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content), nil)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.ErrorContains(t, err, "failed to read config file")
}
