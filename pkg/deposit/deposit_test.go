package deposit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fogswap/config"
	"fogswap/pkg/types"
)

func testConfig() config.AutoDepositConfig {
	return config.AutoDepositConfig{
		Enabled: true,
		Solana:  config.SolanaConfig{Enabled: true, RPCUrl: "https://api.devnet.solana.com"},
		EVM: config.EVMConfig{
			Enabled: true,
			Networks: map[string]config.EVMNetwork{
				"eth": {RPCUrl: "http://127.0.0.1:8545", ChainID: 1},
				"bsc": {RPCUrl: "http://127.0.0.1:8546", ChainID: 56},
			},
		},
		Monero: config.MoneroConfig{Enabled: false},
	}
}

func TestManager_IsEnabledForNetwork(t *testing.T) {
	m := NewManager(testConfig(), nil)

	assert.True(t, m.IsEnabledForNetwork("sol"))
	assert.True(t, m.IsEnabledForNetwork("SOLANA"))
	assert.True(t, m.IsEnabledForNetwork("eth"))
	assert.True(t, m.IsEnabledForNetwork("BSC"))
	assert.False(t, m.IsEnabledForNetwork("xmr"))
	assert.False(t, m.IsEnabledForNetwork("trx"))

	cfg := testConfig()
	cfg.Enabled = false
	assert.False(t, NewManager(cfg, nil).IsEnabledForNetwork("sol"))
}

func TestManager_SupportedNetworks(t *testing.T) {
	assert.Equal(t, []string{"sol", "bsc", "eth"}, NewManager(testConfig(), nil).SupportedNetworks())

	cfg := testConfig()
	cfg.Enabled = false
	assert.Empty(t, NewManager(cfg, nil).SupportedNetworks())
}

func TestManager_SendDepositRejects(t *testing.T) {
	memo := "123456"
	empty := ""

	tests := []struct {
		name string
		cfg  func() config.AutoDepositConfig
		req  Request
		is   error
		msg  string
	}{
		{
			name: "globally disabled",
			cfg: func() config.AutoDepositConfig {
				c := testConfig()
				c.Enabled = false
				return c
			},
			req: Request{Network: "sol", Address: "addr", Amount: 1},
			msg: "auto-deposit is not enabled in configuration",
		},
		{
			name: "network disabled",
			cfg:  testConfig,
			req:  Request{Network: "xmr", Address: "addr", Amount: 1},
			msg:  "auto-deposit is not enabled for network: xmr",
		},
		{
			name: "memo required",
			cfg:  testConfig,
			req:  Request{Network: "sol", Address: "addr", ExtraID: &memo, Amount: 1},
			is:   ErrMemoRequired,
		},
		{
			name: "zero amount",
			cfg:  testConfig,
			req:  Request{Network: "sol", Address: "addr", ExtraID: &empty, Amount: 0},
			msg:  "invalid deposit amount: 0",
		},
		{
			name: "missing solana key",
			cfg:  testConfig,
			req:  Request{Network: "sol", Address: "addr", Amount: 1},
			msg:  "private key not configured for Solana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.cfg(), nil)
			_, err := m.SendDeposit(context.Background(), tt.req)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.msg != "" {
				assert.EqualError(t, err, tt.msg)
			}
		})
	}
}

func TestRequestFromTransaction(t *testing.T) {
	extra := "memo"
	info := &types.TransactionInfo{
		NetworkFrom:         "eth",
		ContractAddressFrom: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		PayinAddress:        "0xabc",
		PayinExtraID:        &extra,
		AmountFrom:          12.5,
	}

	req := RequestFromTransaction(info, false)
	assert.Equal(t, Request{
		Network:         "eth",
		ContractAddress: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Native:          false,
		Address:         "0xabc",
		ExtraID:         &extra,
		Amount:          12.5,
	}, req)
}

type rpcCall struct {
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

func newMoneroServer(t *testing.T, unlocked uint64, calls *[]rpcCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rpcuser", user)
		assert.Equal(t, "rpcpass", pass)

		var call rpcCall
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		*calls = append(*calls, call)

		w.Header().Set("Content-Type", "application/json")
		switch call.Method {
		case "get_version":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"0","result":{"version":196613}}`))
		case "get_balance":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"0","result":{"balance":` +
				jsonNumber(unlocked) + `,"unlocked_balance":` + jsonNumber(unlocked) + `}}`))
		case "transfer":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"0","result":{"tx_hash":"7663438de4f72b25a0e395b770ea9ecf7108cd2f0c4b75be0b14a103d3362be9","tx_key":"25c9d8ec20045c80c93d665c9d3684aab7335f8b2cd02e1ba2638485afd1c70e"}}`))
		default:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"0","error":{"code":-32601,"message":"Method not found"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonNumber(v uint64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestMoneroDepositor_SendDeposit(t *testing.T) {
	var calls []rpcCall
	srv := newMoneroServer(t, 5_000_000_000_000, &calls)

	m := NewMoneroDepositor(config.MoneroConfig{
		RPCUrl:       srv.URL + "/json_rpc",
		Username:     "rpcuser",
		Password:     "rpcpass",
		AccountIndex: 1,
		Priority:     2,
	})
	defer m.Close()

	txid, err := m.SendDeposit(context.Background(), Request{
		Network: "xmr",
		Native:  true,
		Address: "44AFFq5kSiGBoZ4NMDwYtN18obc8AemS33DBLWs3H7otXft3XjrpDtQGv7SqSsaBYBb98uNbr2VBBEt7f2wfn3RVGQBEP3A",
		Amount:  1.25,
	})
	require.NoError(t, err)
	assert.Equal(t, "7663438de4f72b25a0e395b770ea9ecf7108cd2f0c4b75be0b14a103d3362be9", txid)

	require.Len(t, calls, 3)
	assert.Equal(t, "get_version", calls[0].Method)
	assert.Equal(t, "get_balance", calls[1].Method)
	assert.Equal(t, float64(1), calls[1].Params["account_index"])

	transfer := calls[2]
	assert.Equal(t, "transfer", transfer.Method)
	assert.Equal(t, float64(2), transfer.Params["priority"])
	assert.Equal(t, true, transfer.Params["get_tx_key"])
	assert.NotContains(t, transfer.Params, "unlock_time")

	destinations, ok := transfer.Params["destinations"].([]interface{})
	require.True(t, ok)
	require.Len(t, destinations, 1)
	dest := destinations[0].(map[string]interface{})
	assert.Equal(t, float64(1_250_000_000_000), dest["amount"])
}

func TestMoneroDepositor_InsufficientBalance(t *testing.T) {
	var calls []rpcCall
	srv := newMoneroServer(t, 1_000_000_000, &calls)

	m := NewMoneroDepositor(config.MoneroConfig{
		RPCUrl:   srv.URL,
		Username: "rpcuser",
		Password: "rpcpass",
	})

	_, err := m.SendDeposit(context.Background(), Request{Address: "44AF", Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
	assert.Len(t, calls, 2)
}

func TestMoneroDepositor_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"0","error":{"code":-13,"message":"No wallet file"}}`))
	}))
	defer srv.Close()

	m := NewMoneroDepositor(config.MoneroConfig{RPCUrl: srv.URL})

	_, err := m.SendDeposit(context.Background(), Request{Address: "44AF", Amount: 1})
	require.Error(t, err)

	var rpcErr *MoneroRPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -13, rpcErr.Code)
	assert.Equal(t, "No wallet file", rpcErr.Message)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{amount: "1", decimals: 18, want: "1000000000000000000"},
		{amount: "0.5", decimals: 18, want: "500000000000000000"},
		{amount: ".25", decimals: 6, want: "250000"},
		{amount: "12.3456789", decimals: 6, want: "12345678"},
		{amount: "100", decimals: 0, want: "100"},
		{amount: "0.1", decimals: 18, want: "100000000000000000"},
		{amount: "", decimals: 18, wantErr: true},
		{amount: "-1", decimals: 18, wantErr: true},
		{amount: "1e5", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := parseAmount(tt.amount, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.1", formatAmount(0.1))
	assert.Equal(t, "0.00000001", formatAmount(1e-8))
	assert.Equal(t, "1500", formatAmount(1500))
}
