package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/services/execution"
	"github.com/qash-finance/qash-sub002/client/services/syncer"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
)

const (
	flagListenAddr  = "listen_addr"
	flagDescription = "description"
	flagReason      = "reason"

	requestTimeout = 2 * time.Minute
)

func init() {
	rootCmd.PersistentFlags().String(flagListenAddr, "localhost:8080", "Listen Address")
}

var rootCmd = &cobra.Command{
	Use:   "cosigner_cli",
	Short: "cosigner node cli utilities",
}

type response struct {
	Result       json.RawMessage `json:"result"`
	ErrorMessage string          `json:"error_message"`
	Warning      string          `json:"warning"`
}

var httpClient = &http.Client{Timeout: requestTimeout}

// call sends a request to the node and decodes the result into out.
func call(cmd *cobra.Command, method, path string, body interface{}, out interface{}) error {
	listenAddr, err := cmd.Flags().GetString(flagListenAddr)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %v", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(cmd.Context(), method, fmt.Sprintf("http://%s%s", listenAddr, path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	var r response
	if err = json.Unmarshal(responseBody, &r); err != nil {
		return fmt.Errorf("failed to unmarshal response: %v", err)
	}
	if r.Warning != "" {
		return fmt.Errorf("%s", color.YellowString(r.Warning))
	}
	if r.ErrorMessage != "" {
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, r.ErrorMessage)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(r.Result, out)
}

func proposalsPath(accountID string) string {
	return fmt.Sprintf("/accounts/%s/proposals", accountID)
}

func statusString(status fsmtypes.ProposalStatus) string {
	switch status {
	case fsmtypes.ProposalStatusReady:
		return color.CyanString(string(status))
	case fsmtypes.ProposalStatusExecuted:
		return color.GreenString(string(status))
	case fsmtypes.ProposalStatusFailed, fsmtypes.ProposalStatusRejected, fsmtypes.ProposalStatusCancelled:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}

func printProposal(p *fsmtypes.Proposal) {
	fmt.Printf("Proposal ID: %s\n", p.ID)
	fmt.Printf("Status: %s\n", statusString(p.Status))
	fmt.Printf("Signatures: %d of %d\n", len(p.Signatures), p.Threshold)
	if p.Description != "" {
		fmt.Printf("Description: %s\n", p.Description)
	}
	for _, r := range p.Recipients {
		fmt.Printf("\t%s <- %d of %s\n", r.Address, r.Amount, r.FaucetID)
	}
	if p.TransactionID != "" {
		fmt.Printf("Transaction ID: %s\n", p.TransactionID)
	}
	if p.Error != "" {
		fmt.Printf("Error: %s\n", color.RedString(p.Error))
	}
	fmt.Println("-----------------------------------------------------")
}

func listProposalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list_proposals [accountID]",
		Args:  cobra.ExactArgs(1),
		Short: "returns all proposals of the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var proposals []fsmtypes.Proposal
			if err := call(cmd, http.MethodGet, proposalsPath(args[0]), nil, &proposals); err != nil {
				return fmt.Errorf("failed to list proposals: %w", err)
			}
			for i := range proposals {
				printProposal(&proposals[i])
			}
			return nil
		},
	}
}

func getProposalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get_proposal [accountID] [proposalID]",
		Args:  cobra.ExactArgs(2),
		Short: "returns the proposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p fsmtypes.Proposal
			if err := call(cmd, http.MethodGet, proposalsPath(args[0])+"/"+args[1], nil, &p); err != nil {
				return fmt.Errorf("failed to get proposal: %w", err)
			}
			printProposal(&p)
			return nil
		},
	}
}

func createBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create_batch [accountID] [recipients.json]",
		Args:  cobra.ExactArgs(2),
		Short: "proposes a batch payment, recipients are read from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read recipients: %w", err)
			}
			var recipients []batch.Recipient
			if err := json.Unmarshal(data, &recipients); err != nil {
				return fmt.Errorf("failed to decode recipients: %w", err)
			}
			description, err := cmd.Flags().GetString(flagDescription)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %v", err)
			}

			var p fsmtypes.Proposal
			body := map[string]interface{}{"recipients": recipients, "description": description}
			if err := call(cmd, http.MethodPost, proposalsPath(args[0]), body, &p); err != nil {
				return fmt.Errorf("failed to create proposal: %w", err)
			}
			printProposal(&p)
			return nil
		},
	}
	cmd.Flags().String(flagDescription, "", "Proposal description")
	return cmd
}

// proposalActionCommand posts to /accounts/{account}/proposals/{id}/{action}.
func proposalActionCommand(action, short string, withReason bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   action + " [accountID] [proposalID]",
		Args:  cobra.ExactArgs(2),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var body interface{}
			if withReason {
				reason, err := cmd.Flags().GetString(flagReason)
				if err != nil {
					return fmt.Errorf("failed to read configuration: %v", err)
				}
				body = map[string]string{"reason": reason}
			}
			var p fsmtypes.Proposal
			if err := call(cmd, http.MethodPost, proposalsPath(args[0])+"/"+args[1]+"/"+action, body, &p); err != nil {
				return fmt.Errorf("failed to %s proposal: %w", action, err)
			}
			printProposal(&p)
			return nil
		},
	}
	if withReason {
		cmd.Flags().String(flagReason, "", "Reason")
	}
	return cmd
}

func executeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "execute [accountID] [proposalID]",
		Args:  cobra.ExactArgs(2),
		Short: "submits a ready proposal to the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result execution.Result
			if err := call(cmd, http.MethodPost, proposalsPath(args[0])+"/"+args[1]+"/execute", nil, &result); err != nil {
				return fmt.Errorf("failed to execute proposal: %w", err)
			}
			if result.AlreadyApplied {
				fmt.Println(color.YellowString("Transaction was already applied by another cosigner"))
			}
			fmt.Printf("Transaction ID: %s\n", color.GreenString(result.TransactionID))
			fmt.Printf("Submission height: %d\n", result.SubmissionHeight)
			return nil
		},
	}
}

func syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "runs a sync round on the node and prints its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status syncer.Status
			if err := call(cmd, http.MethodPost, "/sync", nil, &status); err != nil {
				return fmt.Errorf("failed to sync: %w", err)
			}
			fmt.Printf("Height: %d\n", status.Height)
			fmt.Printf("Last sync: %s\n", status.LastSync.Format(time.RFC3339))
			if status.Paused {
				fmt.Println(color.YellowString("Sync is paused while a proposal executes"))
			}
			return nil
		},
	}
}

func main() {
	rootCmd.AddCommand(
		listProposalsCommand(),
		getProposalCommand(),
		createBatchCommand(),
		proposalActionCommand("approve", "signs the proposal with the node key", false),
		proposalActionCommand("cancel", "cancels the proposal", true),
		proposalActionCommand("reject", "rejects the proposal", true),
		executeCommand(),
		syncCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
