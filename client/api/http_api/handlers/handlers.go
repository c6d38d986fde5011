package handlers

import (
	"context"

	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/services"
	"github.com/qash-finance/qash-sub002/client/services/execution"
	"github.com/qash-finance/qash-sub002/client/services/proposal"
	"github.com/qash-finance/qash-sub002/client/services/syncer"
	"github.com/qash-finance/qash-sub002/primitives"
)

type Executor interface {
	Execute(ctx context.Context, accountID, proposalID string) (*execution.Result, error)
}

type SyncService interface {
	Status() syncer.Status
	SyncOnce(ctx context.Context) error
	Snapshot(accountID string) (syncer.AccountSnapshot, bool)
}

// Config lists what the handlers depend on.
type Config struct {
	Username  string
	Signer    *primitives.EcdsaSigner
	Accounts  *accounts.Registry
	Proposals proposal.ProposalService
	Executor  Executor
	Syncer    SyncService
}

type HTTPApp struct {
	username  string
	signer    *primitives.EcdsaSigner
	hasher    primitives.Hasher
	accounts  *accounts.Registry
	proposals proposal.ProposalService
	executor  Executor
	syncer    SyncService
}

func New(cfg Config) *HTTPApp {
	return &HTTPApp{
		username:  cfg.Username,
		signer:    cfg.Signer,
		hasher:    primitives.NewBlake2bHasher(),
		accounts:  cfg.Accounts,
		proposals: cfg.Proposals,
		executor:  cfg.Executor,
		syncer:    cfg.Syncer,
	}
}

func NewHTTPApp(sp *services.ServiceProvider) *HTTPApp {
	return New(Config{
		Username:  sp.GetConfig().Username,
		Signer:    sp.GetSigner(),
		Accounts:  sp.GetAccounts(),
		Proposals: sp.GetProposalService(),
		Executor:  sp.GetExecutor(),
		Syncer:    sp.GetSyncer(),
	})
}
