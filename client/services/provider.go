package services

import (
	"errors"

	"github.com/qash-finance/qash-sub002/client/config"
	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/modules/keystore"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/modules/metadata"
	"github.com/qash-finance/qash-sub002/client/modules/state"
	"github.com/qash-finance/qash-sub002/client/services/execution"
	"github.com/qash-finance/qash-sub002/client/services/proposal"
	"github.com/qash-finance/qash-sub002/client/services/syncer"
	"github.com/qash-finance/qash-sub002/ledger"
	"github.com/qash-finance/qash-sub002/primitives"
	"github.com/qash-finance/qash-sub002/relay"
	"github.com/qash-finance/qash-sub002/storage"
)

var provider ServiceProvider

type ServiceProvider struct {
	config   *config.Config
	logger   logger.Logger
	keyStore keystore.KeyStore
	state    state.State
	storage  storage.Storage
	signer   *primitives.EcdsaSigner

	accounts  *accounts.Registry
	relay     relay.Relay
	ledger    ledger.Client
	metadata  *metadata.Cache
	proposals proposal.ProposalService
	executor  *execution.Orchestrator
	syncer    *syncer.Syncer
}

func (p *ServiceProvider) GetConfig() *config.Config {
	return p.config
}

func (p *ServiceProvider) GetLogger() logger.Logger {
	return p.logger
}

func (p *ServiceProvider) GetKeyStore() keystore.KeyStore {
	return p.keyStore
}

// GetSigner returns the node's cosigner key.
func (p *ServiceProvider) GetSigner() *primitives.EcdsaSigner {
	return p.signer
}

func (p *ServiceProvider) GetState() state.State {
	return p.state
}

func (p *ServiceProvider) GetAccounts() *accounts.Registry {
	return p.accounts
}

func (p *ServiceProvider) GetRelay() relay.Relay {
	return p.relay
}

func (p *ServiceProvider) GetLedger() ledger.Client {
	return p.ledger
}

func (p *ServiceProvider) GetMetadata() *metadata.Cache {
	return p.metadata
}

func (p *ServiceProvider) GetProposalService() proposal.ProposalService {
	return p.proposals
}

func (p *ServiceProvider) GetExecutor() *execution.Orchestrator {
	return p.executor
}

func (p *ServiceProvider) GetSyncer() *syncer.Syncer {
	return p.syncer
}

// Close releases the storage, state and keystore handles.
func (p *ServiceProvider) Close() error {
	var errs []error
	if p.storage != nil {
		errs = append(errs, p.storage.Close())
	}
	if p.state != nil {
		errs = append(errs, p.state.Close())
	}
	if p.keyStore != nil {
		errs = append(errs, p.keyStore.Close())
	}
	return errors.Join(errs...)
}

func App() *ServiceProvider {
	return &provider
}
