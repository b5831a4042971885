package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fogswap/pkg/types"
)

// <amount> <source_token> TO <dest_token>, e.g. "1 SOL TO USDT", "0.25 XMR TO BTC"
var swapPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)\s+([A-Z0-9.]+)\s+TO\s+([A-Z0-9.]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 SOL to USDT"
//   - "1.5 ETH to XMR"
//   - "100 USDC to SOL"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	command = strings.Join(strings.Fields(strings.ToUpper(command)), " ")
	command = strings.TrimPrefix(command, "SWAP ")

	matches := swapPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 SOL to USDT')")
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", matches[1], err)
	}

	req := &types.SwapRequest{
		Amount:      amount,
		SourceToken: matches[2],
		DestToken:   matches[3],
	}
	if err := ValidateSwapRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ValidateSwapRequest validates that a swap request has all required fields
func ValidateSwapRequest(req *types.SwapRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be greater than 0")
	}
	if req.SourceToken == "" {
		return fmt.Errorf("source token is required")
	}
	if req.DestToken == "" {
		return fmt.Errorf("destination token is required")
	}
	return nil
}
