package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/config"
	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/modules/keystore"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/modules/metadata"
	"github.com/qash-finance/qash-sub002/client/modules/state"
	proposalrepo "github.com/qash-finance/qash-sub002/client/repositories/proposal"
	"github.com/qash-finance/qash-sub002/client/services/execution"
	"github.com/qash-finance/qash-sub002/client/services/proposal"
	"github.com/qash-finance/qash-sub002/client/services/syncer"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/ledger"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/relay"
	"github.com/qash-finance/qash-sub002/storage"
	"github.com/qash-finance/qash-sub002/storage/file_storage"
	"github.com/qash-finance/qash-sub002/storage/kafka_storage"
)

func InitServices(cfg *config.Config) error {
	return provider.Init(cfg)
}

// Init builds every service from cfg. Handles opened before a failure are
// closed again.
func (p *ServiceProvider) Init(cfg *config.Config) (err error) {
	p.config = cfg

	defer func() {
		if err != nil {
			_ = p.Close()
		}
	}()

	if p.logger, err = logger.NewLogger(cfg.Username, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	ks, err := keystore.NewLevelDBKeyStore(cfg.KeyStoreDBDSN)
	if err != nil {
		return err
	}
	p.keyStore = ks

	st, err := state.NewLevelDBState(cfg.StateDBDSN, topic(cfg))
	if err != nil {
		return fmt.Errorf("failed to init state: %w", err)
	}
	p.state = st

	if p.storage, err = initStorage(cfg); err != nil {
		return fmt.Errorf("failed to init storage client: %w", err)
	}

	signer, err := loadSigner(ks, cfg.Username)
	if err != nil {
		return fmt.Errorf("failed to load node keys: %w", err)
	}
	p.signer = signer

	psm, ackSigner, err := initPSM(ks, cfg.PSMConfig)
	if err != nil {
		return err
	}

	hasher := primitives.NewBlake2bHasher()

	if p.relay, err = relay.NewLogRelay(relay.LogRelayConfig{
		Storage:        p.storage,
		State:          p.state,
		Repo:           proposalrepo.NewProposalRepo(p.state),
		Hasher:         hasher,
		Logger:         p.logger,
		Signer:         signer,
		AckSigner:      ackSigner,
		TrustedSenders: cfg.TrustedSenders,
	}); err != nil {
		return fmt.Errorf("failed to init relay: %w", err)
	}

	memLedger := ledger.NewMemLedger(hasher)
	if cfg.DevLedgerConfig != nil {
		for _, f := range cfg.DevLedgerConfig.Funds {
			if err := memLedger.Fund(f.AccountID, f.FaucetID, f.Amount); err != nil {
				return fmt.Errorf("failed to fund %s: %w", f.AccountID, err)
			}
		}
	}
	for _, token := range cfg.KnownTokens {
		if err := memLedger.RegisterFaucet(token.FaucetID, ledger.FaucetMetadata{
			Symbol:   token.Symbol,
			Decimals: token.Decimals,
		}); err != nil {
			return fmt.Errorf("failed to register faucet %s: %w", token.Symbol, err)
		}
	}
	p.ledger = memLedger

	if p.metadata, err = metadata.NewCache(p.ledger, cfg.MetadataCacheSz, cfg.KnownTokens); err != nil {
		return fmt.Errorf("failed to init metadata cache: %w", err)
	}

	if p.accounts, err = accounts.NewRegistry(cfg.Accounts...); err != nil {
		return fmt.Errorf("failed to init accounts: %w", err)
	}
	for i := range cfg.Accounts {
		account := &cfg.Accounts[i]
		threshold := account.EffectiveThreshold(fsmtypes.ProposalTypeSend)
		if err := memLedger.RegisterAuth(account.AccountID, account.Scheme, account.SignerCommitments, threshold); err != nil {
			return fmt.Errorf("failed to register auth of %s: %w", account.AccountID, err)
		}
	}

	builder := batch.NewBuilder(hasher, nil)
	p.proposals = proposal.NewProposalService(p.accounts, p.relay, builder, signer, p.logger)

	syncCfg := syncer.Config{}
	if cfg.SyncConfig != nil {
		syncCfg.Interval = cfg.SyncConfig.Interval
		syncCfg.RetryDelay = cfg.SyncConfig.RetryDelay
		syncCfg.MaxParallel = cfg.SyncConfig.MaxParallel
	}
	p.syncer = syncer.NewSyncer(p.accounts, p.relay, p.ledger, p.metadata, syncCfg, p.logger)
	p.executor = execution.NewOrchestrator(p.accounts, p.relay, p.ledger, builder, psm, p.syncer, p.logger)

	p.logger.Log("Services initialized: %d accounts, %s storage, node key %s",
		p.accounts.Len(), cfg.StorageType, signer.PublicKeyHex())
	return nil
}

func topic(cfg *config.Config) string {
	if cfg.StorageType == config.StorageTypeKafka && cfg.KafkaStorageConfig != nil {
		return cfg.KafkaStorageConfig.Topic
	}
	return config.StorageTypeFile
}

func initStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case config.StorageTypeFile:
		fs, err := file_storage.NewFileStorage(cfg.FileStorageConfig.Path, cfg.FileStorageConfig.LockPath)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.StorageTypeKafka:
		kc := cfg.KafkaStorageConfig
		tlsConfig, err := kafka_storage.GetTLSConfig(kc.TrustStorePath)
		if err != nil {
			return nil, err
		}
		ks, err := kafka_storage.NewKafkaStorage(kafka_storage.Config{
			BrokerEndpoint: kc.BrokerEndpoint,
			Topic:          kc.Topic,
			ConsumerGroup:  kc.ConsumerGroup,
			TLSConfig:      tlsConfig,
			ProducerCreds:  kafka_storage.PlainCredentials(splitCredentials(kc.ProducerCredentials)),
			ConsumerCreds:  kafka_storage.PlainCredentials(splitCredentials(kc.ConsumerCredentials)),
			Timeout:        kc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := ks.IgnoreMessages(kc.IgnoredMessages, kc.UseOffsetInsteadId); err != nil {
			_ = ks.Close()
			return nil, fmt.Errorf("failed to ignore messages in storage: %w", err)
		}
		return ks, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// splitCredentials splits "username:password".
func splitCredentials(creds string) (string, string) {
	username, password, _ := strings.Cut(creds, ":")
	return username, password
}

func loadSigner(ks keystore.KeyStore, name string) (*primitives.EcdsaSigner, error) {
	keyPair, err := ks.LoadKeys(name)
	if err != nil {
		if errors.Is(err, keystore.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: run gen_keys for %q first", err, name)
		}
		return nil, err
	}
	return keyPair.Signer()
}

// initPSM resolves the acknowledgment key. With KeyName set the node holds
// the PSM key itself and its commitment overrides the configured one.
func initPSM(ks keystore.KeyStore, cfg *config.PSMConfig) (execution.PSMConfig, *primitives.EcdsaSigner, error) {
	psm := execution.PSMConfig{}
	if cfg == nil {
		return psm, nil, nil
	}

	if cfg.Scheme != "" {
		scheme, err := primitives.ParseScheme(cfg.Scheme)
		if err != nil {
			return psm, nil, fmt.Errorf("invalid psm.scheme: %w", err)
		}
		psm.Scheme = scheme
	}
	psm.Commitment = cfg.Commitment
	if cfg.PublicKey != "" {
		pk, err := primitives.DecodeHexBytes(cfg.PublicKey)
		if err != nil {
			return psm, nil, fmt.Errorf("invalid psm.public_key: %w", err)
		}
		psm.PublicKey = pk
	}

	if cfg.KeyName == "" {
		return psm, nil, nil
	}
	ackSigner, err := loadSigner(ks, cfg.KeyName)
	if err != nil {
		return psm, nil, fmt.Errorf("failed to load psm key: %w", err)
	}
	psm.Scheme = primitives.SchemeEcdsa
	psm.PublicKey = ackSigner.PublicKey()
	psm.Commitment = ackSigner.Commitment(primitives.NewBlake2bHasher()).Hex()
	return psm, ackSigner, nil
}
