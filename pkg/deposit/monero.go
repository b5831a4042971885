package deposit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"fogswap/config"
)

// atomic units per XMR
const piconeroPerXMR = 1e12

// MoneroDepositor handles Monero deposits using monero-wallet-rpc
type MoneroDepositor struct {
	config config.MoneroConfig
	client *http.Client
}

// NewMoneroDepositor creates a new Monero depositor
func NewMoneroDepositor(cfg config.MoneroConfig) *MoneroDepositor {
	return &MoneroDepositor{
		config: cfg,
		client: &http.Client{},
	}
}

type moneroRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type moneroRPCResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *MoneroRPCError `json:"error,omitempty"`
}

// MoneroRPCError is an error object returned by monero-wallet-rpc
type MoneroRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MoneroRPCError) Error() string {
	return fmt.Sprintf("RPC error (code %d): %s", e.Code, e.Message)
}

type moneroDestination struct {
	Amount  uint64 `json:"amount"`
	Address string `json:"address"`
}

type moneroTransferParams struct {
	Destinations []moneroDestination `json:"destinations"`
	AccountIndex uint32              `json:"account_index"`
	Priority     uint32              `json:"priority"`
	UnlockTime   uint64              `json:"unlock_time,omitempty"`
	GetTxKey     bool                `json:"get_tx_key"`
}

// SendDeposit transfers XMR from the configured account to the payin address
func (m *MoneroDepositor) SendDeposit(ctx context.Context, req Request) (string, error) {
	if err := m.call(ctx, "get_version", nil, nil); err != nil {
		return "", fmt.Errorf("monero-wallet-rpc not accessible: %w", err)
	}

	balance, err := m.unlockedBalance(ctx)
	if err != nil {
		return "", err
	}

	amount := uint64(math.Round(req.Amount * piconeroPerXMR))
	if balance < amount {
		return "", fmt.Errorf("insufficient balance: have %.12f XMR, need %.12f XMR",
			float64(balance)/piconeroPerXMR, req.Amount)
	}

	params := moneroTransferParams{
		Destinations: []moneroDestination{{Amount: amount, Address: req.Address}},
		AccountIndex: m.config.AccountIndex,
		Priority:     m.config.Priority,
		UnlockTime:   m.config.UnlockTime,
		GetTxKey:     true,
	}

	var result struct {
		TxHash string `json:"tx_hash"`
	}
	if err := m.call(ctx, "transfer", params, &result); err != nil {
		return "", fmt.Errorf("monero-wallet-rpc transfer failed: %w", err)
	}
	if result.TxHash == "" {
		return "", fmt.Errorf("empty transaction hash returned")
	}

	return result.TxHash, nil
}

// unlockedBalance returns the spendable balance in atomic units
func (m *MoneroDepositor) unlockedBalance(ctx context.Context) (uint64, error) {
	params := map[string]interface{}{
		"account_index": m.config.AccountIndex,
	}

	var result struct {
		Balance         uint64 `json:"balance"`
		UnlockedBalance uint64 `json:"unlocked_balance"`
	}
	if err := m.call(ctx, "get_balance", params, &result); err != nil {
		return 0, fmt.Errorf("monero-wallet-rpc get_balance failed: %w", err)
	}

	return result.UnlockedBalance, nil
}

// call makes a JSON-RPC call and decodes the result into out when out is non-nil
func (m *MoneroDepositor) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	reqBody, err := json.Marshal(moneroRPCRequest{
		JSONRPC: "2.0",
		ID:      "0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.RPCUrl, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if m.config.Username != "" && m.config.Password != "" {
		req.SetBasicAuth(m.config.Username, m.config.Password)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("RPC returned status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp moneroRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no dedicated connection
func (m *MoneroDepositor) Close() {}
