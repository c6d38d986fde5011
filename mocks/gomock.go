package mocks

//go:generate mockgen -source=./../client/modules/state/state.go -destination=./clientMocks/state_mock.go -package=clientMocks
//go:generate mockgen -source=./../storage/types.go -destination=./storageMocks/storage_mock.go -package=storageMocks
//go:generate mockgen -source=./../relay/relay.go -destination=./relayMocks/relay_mock.go -package=relayMocks
//go:generate mockgen -source=./../ledger/ledger.go -destination=./ledgerMocks/ledger_mock.go -package=ledgerMocks
