package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		input   string
		amount  float64
		source  string
		dest    string
		wantErr bool
	}{
		{input: "swap 1 SOL to USDT", amount: 1, source: "SOL", dest: "USDT"},
		{input: "1.5 eth TO xmr", amount: 1.5, source: "ETH", dest: "XMR"},
		{input: "  Swap   100   usdc   to   sol ", amount: 100, source: "USDC", dest: "SOL"},
		{input: ".25 BTC to ETH", amount: 0.25, source: "BTC", dest: "ETH"},
		{input: "0 SOL to USDT", wantErr: true},
		{input: "swap SOL to USDT", wantErr: true},
		{input: "swap 1 SOL USDT", wantErr: true},
		{input: "swap -1 SOL to USDT", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, err := ParseSwapCommand(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amount, req.Amount)
			assert.Equal(t, tt.source, req.SourceToken)
			assert.Equal(t, tt.dest, req.DestToken)
		})
	}
}
