package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fogswap/pkg/client"
	"fogswap/pkg/parser"
	"fogswap/pkg/types"
)

var (
	fromNetwork string
	toNetwork   string
	privateSwap bool
	useXMR      bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-token> to <dest-token>",
	Short: "Get an estimate for a swap",
	Long: `Get a non-binding estimate of how much you would receive for a swap.

Tokens are matched by symbol; use --from-network / --to-network when a symbol
exists on more than one network.

Examples:
  fogswap quote 1 SOL to USDT
  fogswap quote 100 USDT to XMR --from-network eth
  fogswap quote 0.5 BTC to ETH --private --xmr`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	addSwapFlags(quoteCmd)
}

// addSwapFlags registers the flags shared by quote and swap
func addSwapFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromNetwork, "from-network", "", "Source network (e.g. sol, eth, bsc)")
	cmd.Flags().StringVar(&toNetwork, "to-network", "", "Destination network")
	cmd.Flags().BoolVar(&privateSwap, "private", false, "Use a private swap")
	cmd.Flags().BoolVar(&useXMR, "xmr", false, "Route the swap through Monero")
}

// pair is a parsed swap with both tokens resolved
type pair struct {
	req  *types.SwapRequest
	from *types.TokenInfo
	to   *types.TokenInfo
}

// resolvePair parses the swap expression and looks both symbols up in the token list
func resolvePair(ctx context.Context, s *session, args []string) (*pair, error) {
	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	req.SourceNetwork = fromNetwork
	req.DestNetwork = toNetwork
	req.Private = privateSwap
	req.UseXMR = useXMR

	lists, err := s.client.ListTokens(ctx)
	if err != nil {
		return nil, err
	}

	from, err := types.FindToken(lists, req.SourceNetwork, req.SourceToken)
	if err != nil {
		return nil, fmt.Errorf("source %w (try: fogswap list-tokens --symbol %s)", err, req.SourceToken)
	}
	to, err := types.FindToken(lists, req.DestNetwork, req.DestToken)
	if err != nil {
		return nil, fmt.Errorf("destination %w (try: fogswap list-tokens --symbol %s)", err, req.DestToken)
	}

	s.logger.Debug("resolved tokens",
		zap.String("from", from.Network+"/"+from.Token),
		zap.String("from_contract", from.ContractAddress),
		zap.String("to", to.Network+"/"+to.Token),
		zap.String("to_contract", to.ContractAddress),
	)

	return &pair{req: req, from: from, to: to}, nil
}

func (p *pair) quoteRequest() client.QuoteRequest {
	txType := p.req.TxType()
	return client.QuoteRequest{
		AmountFrom:          p.req.Amount,
		NetworkFrom:         p.from.Network,
		ContractAddressFrom: p.from.ContractAddress,
		NetworkTo:           p.to.Network,
		ContractAddressTo:   p.to.ContractAddress,
		TxType:              &txType,
		UseXMR:              &p.req.UseXMR,
	}
}

func runQuote(cmd *cobra.Command, args []string) {
	s, err := newSession(cmd)
	exitOnError(err)
	defer s.close()

	ctx, cancel := s.callContext(context.Background())
	defer cancel()

	stop := s.spin("Fetching quote...")
	p, err := resolvePair(ctx, s, args)
	if err != nil {
		stop()
		exitOnError(err)
	}
	quote, err := s.client.GetQuote(ctx, p.quoteRequest())
	stop()
	exitOnError(err)

	if s.json {
		exitOnError(s.output(quote))
		return
	}
	displayQuote(quote, p)
}

func displayQuote(quote *types.QuoteResponse, p *pair) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s (%s)\n", formatFloat(quote.AmountFrom), color.YellowString(p.from.Token), quote.NetworkFrom)
	fmt.Printf("  To:                ~%s %s (%s)\n", formatFloat(quote.AmountTo), color.YellowString(p.to.Token), quote.NetworkTo)
	fmt.Printf("  Type:              %s\n", quote.TxType)

	if quote.ConvertUsd.From != nil {
		fmt.Printf("  Value In:          $%.2f\n", *quote.ConvertUsd.From)
	}
	if quote.ConvertUsd.To != nil {
		fmt.Printf("  Value Out:         $%.2f\n", *quote.ConvertUsd.To)
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
