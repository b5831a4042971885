package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fogswap/pkg/types"
)

var (
	filterNetwork string
	filterSymbol  string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List all supported tokens",
	Long: `List all tokens supported by Fogswap, grouped by network.

You can filter tokens by network or symbol.

Examples:
  fogswap list-tokens
  fogswap list-tokens --network sol
  fogswap list-tokens --symbol USDT --json`,
	Args: cobra.NoArgs,
	Run:  runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterNetwork, "network", "", "Filter by network")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	s, err := newSession(cmd)
	exitOnError(err)
	defer s.close()

	ctx, cancel := s.callContext(context.Background())
	defer cancel()

	stop := s.spin("Fetching supported tokens...")
	lists, err := s.client.ListTokens(ctx)
	stop()
	exitOnError(err)

	filtered := filterTokenLists(lists, filterNetwork, filterSymbol)

	if s.json {
		exitOnError(s.output(filtered))
		return
	}
	displayTokens(filtered)
}

// filterTokenLists keeps networks equal to network and tokens whose symbol contains symbol, case-insensitively.
// Networks left without tokens are dropped.
func filterTokenLists(lists []types.TokenList, network, symbol string) []types.TokenList {
	symbol = strings.ToUpper(symbol)

	filtered := make([]types.TokenList, 0, len(lists))
	for _, list := range lists {
		if network != "" && !strings.EqualFold(list.Network, network) {
			continue
		}
		if symbol == "" {
			filtered = append(filtered, list)
			continue
		}

		tokens := make([]types.TokenInfo, 0)
		for _, token := range list.Tokens {
			if strings.Contains(strings.ToUpper(token.Token), symbol) {
				tokens = append(tokens, token)
			}
		}
		if len(tokens) > 0 {
			list.Tokens = tokens
			filtered = append(filtered, list)
		}
	}
	return filtered
}

func displayTokens(lists []types.TokenList) {
	total := 0
	for _, list := range lists {
		total += len(list.Tokens)
	}
	if total == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].Network < lists[j].Network
	})

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	for _, list := range lists {
		if len(list.Tokens) == 0 {
			continue
		}
		color.Cyan("\n%s", strings.ToUpper(list.Network))
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range list.Tokens {
			address := token.ContractAddress
			if len(address) > 60 {
				address = address[:57] + "..."
			}

			kind := "token "
			if token.IsNative {
				kind = "native"
			}

			fmt.Printf("  %-10s  %s  %s\n",
				color.YellowString(token.Token),
				kind,
				color.HiBlackString(address))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d networks\n\n", total, len(lists))
}
