package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fogswap/pkg/tracker"
	"fogswap/pkg/types"
)

var (
	watchStatus   bool
	watchInterval time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status <transaction-id>",
	Short: "Check the status of a swap",
	Long: `Check the status of a swap by the transaction id returned from 'fogswap swap'.

With --watch the status is polled until it reaches one of watch.stop_statuses
(default: finished) or Ctrl+C is pressed.

Examples:
  fogswap status S7ZulO3j16
  fogswap status S7ZulO3j16 --watch
  fogswap status S7ZulO3j16 --watch --interval 10s`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval when watching (default from config, 5s)")
}

func runStatus(cmd *cobra.Command, args []string) {
	id := args[0]

	s, err := newSession(cmd)
	exitOnError(err)
	defer s.close()

	if watchStatus {
		watchSwapStatus(s, id)
		return
	}

	ctx, cancel := s.callContext(context.Background())
	defer cancel()

	stop := s.spin("Checking swap status...")
	info, err := s.client.GetTransactionInfo(ctx, id)
	stop()
	exitOnError(err)

	if s.json {
		exitOnError(s.output(info))
		return
	}
	displayTransaction(info)
}

// boundedSource applies the per-call timeout to each poll
type boundedSource struct {
	s *session
}

func (b boundedSource) GetTransactionInfo(ctx context.Context, id string) (*types.TransactionInfo, error) {
	ctx, cancel := b.s.callContext(ctx)
	defer cancel()
	return b.s.client.GetTransactionInfo(ctx, id)
}

func watchSwapStatus(s *session, id string) {
	interval := s.cfg.Watch.Interval
	if watchInterval > 0 {
		interval = watchInterval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !s.json {
		fmt.Printf("\nWatching swap %s\n", color.CyanString(id))
		fmt.Printf("Checking every %s until %s. Press Ctrl+C to stop.\n", interval, strings.Join(s.cfg.Watch.StopStatuses, ", "))
	}

	t := tracker.New(boundedSource{s: s}, interval, s.cfg.Watch.StopStatuses, s.logger)
	final, err := t.Watch(ctx, id, func(info *types.TransactionInfo) {
		if s.json {
			exitOnError(s.output(info))
			return
		}
		fmt.Printf("\n[%s] status: %s\n", time.Now().Format("15:04:05"), statusColor(info.Status))
		displayTransaction(info)
	})

	switch {
	case err == nil:
		if !s.json {
			printSuccess(fmt.Sprintf("Swap %s reached status %s", id, final.Status))
		}
	case errors.Is(err, context.Canceled):
		if !s.json {
			fmt.Println("\nStopped watching.")
		}
	default:
		exitOnError(fmt.Errorf("transaction %s: %w", id, err))
	}
}

func displayTransaction(info *types.TransactionInfo) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Transaction ID:  %s\n", color.CyanString(info.ID))
	fmt.Printf("  Status:          %s\n", statusColor(info.Status))
	fmt.Printf("  Type:            %s\n", info.TxType)
	fmt.Printf("  Created:         %s\n", info.CreatedTime().Format("2006-01-02 15:04:05"))
	fmt.Printf("  From:            %s on %s\n", formatFloat(info.AmountFrom), info.NetworkFrom)
	fmt.Printf("  To:              ~%s on %s\n", formatFloat(info.AmountTo), info.NetworkTo)

	fmt.Printf("  Payin Address:   %s\n", info.PayinAddress)
	if info.PayinExtraID != nil {
		fmt.Printf("  Payin Memo:      %s\n", color.MagentaString(*info.PayinExtraID))
	}
	if info.PayinHash != nil {
		fmt.Printf("  Payin Tx:        %s\n", color.HiBlackString(*info.PayinHash))
	}

	fmt.Printf("  Payout Address:  %s\n", info.PayoutAddress)
	if info.PayoutExtraID != nil {
		fmt.Printf("  Payout Memo:     %s\n", *info.PayoutExtraID)
	}
	if info.PayoutHash != nil {
		fmt.Printf("  Payout Tx:       %s\n", color.HiBlackString(*info.PayoutHash))
	}

	if info.ConvertUsd != nil {
		fmt.Printf("  Value:           $%.2f\n", *info.ConvertUsd)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

// statusColor highlights well-known statuses; anything else is shown as received
func statusColor(status string) string {
	switch strings.ToLower(status) {
	case "finished":
		return color.GreenString(status)
	case "new", "waiting", "confirming", "exchanging", "sending":
		return color.YellowString(status)
	case "failed", "refunded", "expired":
		return color.RedString(status)
	default:
		return status
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
