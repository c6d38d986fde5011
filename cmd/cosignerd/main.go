package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/qash-finance/qash-sub002/client/api/http_api"
	"github.com/qash-finance/qash-sub002/client/config"
	"github.com/qash-finance/qash-sub002/client/modules/keystore"
	"github.com/qash-finance/qash-sub002/client/services"
	"github.com/qash-finance/qash-sub002/fsm/fsm"
	"github.com/qash-finance/qash-sub002/fsm/state_machines/proposal_fsm"
	"github.com/qash-finance/qash-sub002/primitives"
)

const (
	flagConfigPath    = "config_path"
	flagUserName      = "username"
	flagLogLevel      = "log_level"
	flagListenAddr    = "http_api.listen_addr"
	flagStateDBDSN    = "state_dbdsn"
	flagKeyStoreDBDSN = "key_store_dbdsn"
	flagStorageType   = "storage_type"
	flagSyncInterval  = "sync.interval"
	flagKeyName       = "key_name"

	shutdownTimeout = 10 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   "cosignerd",
	Short: "multisig cosigner node",
}

func init() {
	rootCmd.PersistentFlags().String(flagConfigPath, "", "Path to a config file")
	rootCmd.PersistentFlags().String(flagUserName, "cosigner", "Username")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "Log level")
	rootCmd.PersistentFlags().String(flagListenAddr, "localhost:8080", "Listen Address")
	rootCmd.PersistentFlags().String(flagStateDBDSN, "./cosigner_state", "State DBDSN")
	rootCmd.PersistentFlags().String(flagKeyStoreDBDSN, "./cosigner_key_store", "Key Store DBDSN")
	rootCmd.PersistentFlags().String(flagStorageType, config.StorageTypeFile, "Relay log storage: file or kafka")
	rootCmd.PersistentFlags().Duration(flagSyncInterval, config.DefaultSyncInterval, "Sync loop interval")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString(flagConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return config.Load(configPath, cmd.Flags())
}

func startCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "starts the cosigner node: sync loop and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := services.InitServices(cfg); err != nil {
				return fmt.Errorf("failed to init services: %w", err)
			}
			sp := services.App()
			defer sp.Close()

			server := &http_api.RESTApiProvider{}
			if err := server.NewServer(cfg, sp); err != nil {
				return fmt.Errorf("failed to init http server: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// the first failure cancels the rest
			p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
			p.Go(func(ctx context.Context) error {
				if err := sp.GetSyncer().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
			p.Go(func(ctx context.Context) error {
				sp.GetLogger().Log("HTTP API listening on %s", cfg.HttpApiConfig.ListenAddr)
				return server.Start()
			})
			p.Go(func(ctx context.Context) error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Stop(shutdownCtx)
			})

			err = p.Wait()
			sp.GetLogger().Log("Cosigner node stopped")
			return err
		},
	}
}

func genKeyPairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen_keys",
		Short: "generates a secp256k1 key pair and stores it in the key store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			name, err := cmd.Flags().GetString(flagKeyName)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			if name == "" {
				name = cfg.Username
			}

			keyStore, err := keystore.NewLevelDBKeyStore(cfg.KeyStoreDBDSN)
			if err != nil {
				return fmt.Errorf("failed to init key store: %w", err)
			}
			defer keyStore.Close()

			if _, err := keyStore.LoadKeys(name); err == nil {
				return fmt.Errorf("keys for %s already exist in %s", name, cfg.KeyStoreDBDSN)
			} else if !errors.Is(err, keystore.ErrKeyNotFound) {
				return err
			}

			keyPair, err := keystore.NewKeyPair()
			if err != nil {
				return err
			}
			if err = keyStore.PutKeys(name, keyPair); err != nil {
				return fmt.Errorf("failed to save keypair: %w", err)
			}
			signer, err := keyPair.Signer()
			if err != nil {
				return err
			}

			fmt.Printf("keypair generated for %s and saved to %s\n", color.GreenString(name), cfg.KeyStoreDBDSN)
			fmt.Printf("public key: %s\n", color.CyanString(signer.PublicKeyHex()))
			fmt.Printf("commitment: %s\n", color.CyanString(signer.Commitment(primitives.NewBlake2bHasher()).Hex()))
			return nil
		},
	}
	cmd.Flags().String(flagKeyName, "", "Key name, the username when empty")
	return cmd
}

func proposalFSMGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "proposal_fsm",
		Short: "prints the proposal state machine in graphviz dot format",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(fsm.Visualize(proposal_fsm.New().FSM))
		},
	}
}

func main() {
	rootCmd.AddCommand(
		startCommand(),
		genKeyPairCommand(),
		proposalFSMGraphCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
