package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/qash-finance/qash-sub002/client/modules/metadata"
	"github.com/qash-finance/qash-sub002/client/types"
)

const (
	envPrefix = "COSIGNER"

	StorageTypeFile  = "file"
	StorageTypeKafka = "kafka"

	DefaultSyncInterval = 10 * time.Second
	DefaultRetryDelay   = 500 * time.Millisecond
)

type HttpApiConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Debug      bool   `mapstructure:"debug"`
}

type KafkaStorageConfig struct {
	BrokerEndpoint      string        `mapstructure:"broker"`
	Topic               string        `mapstructure:"topic"`
	ConsumerGroup       string        `mapstructure:"consumer_group"`
	TrustStorePath      string        `mapstructure:"truststore_path"`
	ProducerCredentials string        `mapstructure:"producer_credentials"`
	ConsumerCredentials string        `mapstructure:"consumer_credentials"`
	Timeout             time.Duration `mapstructure:"timeout"`

	IgnoredMessages    []string `mapstructure:"ignored_messages"`
	UseOffsetInsteadId bool     `mapstructure:"use_offset_instead_id"`
}

type FileStorageConfig struct {
	Path     string `mapstructure:"path"`
	LockPath string `mapstructure:"lock_path"`
}

type SyncConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// MaxParallel bounds concurrent account syncs
	MaxParallel int `mapstructure:"max_parallel"`
}

type PSMConfig struct {
	// Commitment of the PSM acknowledgment key
	Commitment string `mapstructure:"commitment"`
	PublicKey  string `mapstructure:"public_key"`
	Scheme     string `mapstructure:"scheme"`
	// KeyName loads the acknowledgment key from the keystore, the node
	// then acknowledges deltas itself
	KeyName string `mapstructure:"key_name"`
}

// DevLedgerConfig seeds the in-memory ledger.
type DevLedgerConfig struct {
	Funds []DevFunding `mapstructure:"funds"`
}

type DevFunding struct {
	AccountID string `mapstructure:"account_id"`
	FaucetID  string `mapstructure:"faucet_id"`
	Amount    uint64 `mapstructure:"amount"`
}

type Config struct {
	Username      string `mapstructure:"username"`
	LogLevel      string `mapstructure:"log_level"`
	StateDBDSN    string `mapstructure:"state_dbdsn"`
	KeyStoreDBDSN string `mapstructure:"key_store_dbdsn"`
	StorageType   string `mapstructure:"storage_type"`

	HttpApiConfig      *HttpApiConfig      `mapstructure:"http_api"`
	FileStorageConfig  *FileStorageConfig  `mapstructure:"file_storage"`
	KafkaStorageConfig *KafkaStorageConfig `mapstructure:"kafka_storage"`
	SyncConfig         *SyncConfig         `mapstructure:"sync"`
	PSMConfig          *PSMConfig          `mapstructure:"psm"`
	DevLedgerConfig    *DevLedgerConfig    `mapstructure:"dev_ledger"`

	TrustedSenders  []string                `mapstructure:"trusted_senders"`
	Accounts        []types.MultisigAccount `mapstructure:"accounts"`
	KnownTokens     []metadata.KnownToken   `mapstructure:"known_tokens"`
	MetadataCacheSz int                     `mapstructure:"metadata_cache_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("username", "cosigner")
	v.SetDefault("log_level", "info")
	v.SetDefault("state_dbdsn", "./cosigner_state")
	v.SetDefault("key_store_dbdsn", "./cosigner_key_store")
	v.SetDefault("storage_type", StorageTypeFile)
	v.SetDefault("http_api.listen_addr", "localhost:8080")
	v.SetDefault("file_storage.path", "./cosigner_log")
	v.SetDefault("kafka_storage.topic", "proposals")
	v.SetDefault("kafka_storage.timeout", 10*time.Second)
	v.SetDefault("sync.interval", DefaultSyncInterval)
	v.SetDefault("sync.retry_delay", DefaultRetryDelay)
	v.SetDefault("sync.max_parallel", 4)
	v.SetDefault("psm.scheme", "ecdsa")
	v.SetDefault("metadata_cache_size", metadata.DefaultCacheSize)
}

// Load reads the configuration from defaults, the optional config file, the
// environment (COSIGNER_ prefix) and flags, in increasing precedence.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}
	switch c.StorageType {
	case StorageTypeFile:
		if c.FileStorageConfig == nil || c.FileStorageConfig.Path == "" {
			return errors.New("file_storage.path is required")
		}
	case StorageTypeKafka:
		if c.KafkaStorageConfig == nil || c.KafkaStorageConfig.BrokerEndpoint == "" {
			return errors.New("kafka_storage.broker is required")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	if c.SyncConfig == nil || c.SyncConfig.Interval <= 0 {
		return errors.New("sync.interval must be positive")
	}
	for i := range c.Accounts {
		if err := c.Accounts[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
