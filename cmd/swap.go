package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fogswap/pkg/client"
	"fogswap/pkg/deposit"
	"fogswap/pkg/types"
)

var (
	payoutAddr    string
	payoutExtraID string
	noConfirm     bool
	autoDeposit   bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Create a swap",
	Long: `Create a swap with Fogswap and print the payin instructions.

IMPORTANT:
  - You MUST specify --payout (where you'll receive tokens)
  - Some payout networks need --payout-extra-id (memo / destination tag)
  - With --auto-deposit (or auto_deposit.enabled) the payin is sent from your
    configured wallet for sol, xmr and configured EVM networks

Examples:
  fogswap swap 1 SOL to USDT --to-network eth --payout 0x123...
  fogswap swap 0.5 XMR to BTC --payout bc1q... --private
  fogswap swap 100 USDT to SOL --from-network eth --payout <sol-addr> --auto-deposit --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)
	addSwapFlags(swapCmd)

	swapCmd.Flags().StringVar(&payoutAddr, "payout", "", "Payout address (REQUIRED - where you'll receive tokens)")
	swapCmd.Flags().StringVar(&payoutExtraID, "payout-extra-id", "", "Payout memo / extra id, when the payout network needs one")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompts")
	swapCmd.Flags().BoolVar(&autoDeposit, "auto-deposit", false, "Automatically send the payin (requires configuration)")
	_ = swapCmd.MarkFlagRequired("payout")
}

func runSwap(cmd *cobra.Command, args []string) {
	s, err := newSession(cmd)
	exitOnError(err)
	defer s.close()

	ctx, cancel := s.callContext(context.Background())
	stop := s.spin("Fetching quote...")
	p, err := resolvePair(ctx, s, args)
	if err == nil {
		p.req.PayoutAddress = payoutAddr
		p.req.PayoutExtraID = payoutExtraID
	}
	var quote *types.QuoteResponse
	if err == nil {
		quote, err = s.client.GetQuote(ctx, p.quoteRequest())
	}
	stop()
	cancel()
	exitOnError(err)

	if !s.json {
		displayQuote(quote, p)
	}

	skipConfirm := noConfirm || s.cfg.AutoConfirm || s.json
	if !skipConfirm && !confirm("Proceed with swap?") {
		fmt.Println("\nSwap cancelled.")
		return
	}

	ctx, cancel = s.callContext(context.Background())
	stop = s.spin("Creating swap...")
	info, err := s.client.CreateTransaction(ctx, p.createRequest())
	stop()
	cancel()
	exitOnError(err)

	s.logger.Info("swap created", zapTransaction(info)...)

	var txid string
	if autoDeposit || s.cfg.AutoDeposit.Enabled {
		txid, err = handleAutoDeposit(s, info, p, skipConfirm)
		if err != nil {
			s.logger.Warn("auto-deposit failed", zap.String("id", info.ID), zap.Error(err))
		}
		if err != nil && !s.json {
			color.Red("\nAuto-deposit failed: %v", err)
			color.Yellow("Please send the deposit manually using the instructions below.\n")
		}
	}

	if s.json {
		output := struct {
			*types.TransactionInfo
			DepositTxID string `json:"deposit_txid,omitempty"`
		}{info, txid}
		exitOnError(s.output(output))
		return
	}

	if txid == "" {
		displayPayinInstructions(info, p)
	}

	fmt.Println("\nYou can monitor the swap status using:")
	color.Cyan("  fogswap status %s --watch\n", info.ID)
}

func zapTransaction(info *types.TransactionInfo) []zap.Field {
	return []zap.Field{
		zap.String("id", info.ID),
		zap.String("status", info.Status),
		zap.String("network_from", info.NetworkFrom),
		zap.Float64("amount_from", info.AmountFrom),
		zap.String("payin_address", info.PayinAddress),
	}
}

func (p *pair) createRequest() client.CreateTransactionRequest {
	txType := p.req.TxType()
	req := client.CreateTransactionRequest{
		NetworkFrom:         p.from.Network,
		ContractAddressFrom: p.from.ContractAddress,
		AmountFrom:          p.req.Amount,
		NetworkTo:           p.to.Network,
		ContractAddressTo:   p.to.ContractAddress,
		PayoutAddress:       p.req.PayoutAddress,
		TxType:              &txType,
		UseXMR:              &p.req.UseXMR,
	}
	if p.req.PayoutExtraID != "" {
		req.PayoutExtraID = &p.req.PayoutExtraID
	}
	return req
}

func handleAutoDeposit(s *session, info *types.TransactionInfo, p *pair, skipConfirm bool) (string, error) {
	depositMgr := deposit.NewManager(s.cfg.AutoDeposit, s.logger)

	req := deposit.RequestFromTransaction(info, p.from.IsNative)
	if !depositMgr.IsEnabledForNetwork(req.Network) {
		return "", fmt.Errorf("auto-deposit not enabled for network %s (configured: %s)",
			req.Network, strings.Join(depositMgr.SupportedNetworks(), ", "))
	}

	if !s.json {
		color.Yellow("\nInitiating auto-deposit...\n")
		fmt.Printf("  Network: %s\n", req.Network)
		fmt.Printf("  Amount:  %s %s\n", formatFloat(req.Amount), p.from.Token)
		fmt.Printf("  To:      %s\n", req.Address)
	}

	if !skipConfirm && !confirm("Proceed with auto-deposit?") {
		return "", fmt.Errorf("auto-deposit cancelled by user")
	}

	ctx, cancel := s.callContext(context.Background())
	defer cancel()

	stop := s.spin("Sending deposit...")
	txid, err := depositMgr.SendDeposit(ctx, req)
	stop()
	if err != nil {
		if errors.Is(err, deposit.ErrMemoRequired) {
			return "", err
		}
		return "", fmt.Errorf("failed to send deposit: %w", err)
	}

	if !s.json {
		printSuccess("Deposit sent successfully!")
		fmt.Printf("  Transaction ID: %s\n", color.CyanString(txid))
	}
	return txid, nil
}

func displayPayinInstructions(info *types.TransactionInfo, p *pair) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                  PAYIN INSTRUCTIONS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Swap ID:  %s\n", color.CyanString(info.ID))
	fmt.Printf("\nTo complete the swap, send %s %s (%s) to:\n\n",
		formatFloat(info.AmountFrom), p.from.Token, info.NetworkFrom)
	color.Cyan("  %s\n", info.PayinAddress)

	if info.PayinExtraID != nil && *info.PayinExtraID != "" {
		fmt.Printf("\nMemo (REQUIRED): %s\n", color.MagentaString(*info.PayinExtraID))
	}

	fmt.Printf("\nYou will receive ~%s %s at %s\n", formatFloat(info.AmountTo), p.to.Token, info.PayoutAddress)
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
