package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fogswap/pkg/types"
)

func TestRenderJSON(t *testing.T) {
	info := &types.TransactionInfo{
		ID:           "S7ZulO3j16",
		TxType:       types.TxTypePrivate,
		PayinAddress: "44AFFq5kSiGBoZ4NMDwYtN18obc8AemS33DBLWs3H7otXft3XjrpDtQGv7SqSsaBYBb98uNbr2VBBEt7f2wfn3RVGQBEP3A",
		AmountFrom:   1.5,
		Status:       "waiting",
	}

	tests := []struct {
		name    string
		filter  string
		want    string
		wantErr string
	}{
		{
			name:   "field",
			filter: ".status",
			want:   "\"waiting\"\n",
		},
		{
			name:   "object construction",
			filter: "{id, tx_type}",
			want:   "{\n  \"id\": \"S7ZulO3j16\",\n  \"tx_type\": \"private\"\n}\n",
		},
		{
			name:   "multiple results",
			filter: ".id, .amount_from",
			want:   "\"S7ZulO3j16\"\n1.5\n",
		},
		{
			name:   "null optional",
			filter: ".payin_extra_id",
			want:   "null\n",
		},
		{
			name:    "parse error",
			filter:  ".status |",
			wantErr: "failed to parse jq filter",
		},
		{
			name:    "runtime error",
			filter:  ".status | keys",
			wantErr: "jq filter \".status | keys\" failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := renderJSON(&buf, info, tt.filter)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderJSON_NoFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderJSON(&buf, map[string]int{"a": 1}, ""))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestRenderJSON_InvalidTxType(t *testing.T) {
	var buf bytes.Buffer
	err := renderJSON(&buf, types.QuoteResponse{TxType: "fast"}, "")
	assert.ErrorIs(t, err, types.ErrInvalidTxType)
}

func TestStatusColor(t *testing.T) {
	assert.Contains(t, statusColor("finished"), "finished")
	assert.Contains(t, statusColor("some-new-status"), "some-new-status")
}
