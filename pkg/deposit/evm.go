package deposit

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"fogswap/config"
)

const (
	nativeTransferGas = uint64(21000)
	erc20TransferGas  = uint64(100000)
	nativeDecimals    = 18
)

// minimal ERC20 surface used for payins
const erc20ABI = `[
{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

// EVMDepositor handles deposits on EVM-compatible blockchains
type EVMDepositor struct {
	networkName string
	network     config.EVMNetwork
	client      *ethclient.Client
	privateKey  *ecdsa.PrivateKey
	from        common.Address
	erc20       abi.ABI
}

// NewEVMDepositor creates a new EVM depositor for a specific network
func NewEVMDepositor(cfg config.EVMConfig, networkName string) (*EVMDepositor, error) {
	network, exists := cfg.Networks[networkName]
	if !exists {
		return nil, fmt.Errorf("network %s not configured", networkName)
	}

	if network.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for network %s", networkName)
	}
	if network.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for network %s", networkName)
	}
	if network.ChainID <= 0 {
		return nil, fmt.Errorf("chain id not configured for network %s", networkName)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(network.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	client, err := ethclient.Dial(network.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	return &EVMDepositor{
		networkName: networkName,
		network:     network,
		client:      client,
		privateKey:  privateKey,
		from:        crypto.PubkeyToAddress(privateKey.PublicKey),
		erc20:       parsedABI,
	}, nil
}

// SendDeposit sends the native coin, or the ERC20 token at req.ContractAddress
func (e *EVMDepositor) SendDeposit(ctx context.Context, req Request) (string, error) {
	if !common.IsHexAddress(req.Address) {
		return "", fmt.Errorf("invalid recipient address: %s", req.Address)
	}
	to := common.HexToAddress(req.Address)

	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := e.getGasPrice(ctx)
	if err != nil {
		return "", err
	}

	var tx *ethtypes.Transaction
	if req.Native {
		tx, err = e.nativeTransfer(ctx, to, req.Amount, nonce, gasPrice)
	} else {
		tx, err = e.erc20Transfer(ctx, to, req.ContractAddress, req.Amount, nonce, gasPrice)
	}
	if err != nil {
		return "", err
	}

	if err := e.client.SendTransaction(ctx, tx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return tx.Hash().Hex(), nil
}

func (e *EVMDepositor) nativeTransfer(ctx context.Context, to common.Address, amount float64, nonce uint64, gasPrice *big.Int) (*ethtypes.Transaction, error) {
	value, err := parseAmount(formatAmount(amount), nativeDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	balance, err := e.client.BalanceAt(ctx, e.from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	gasLimit := nativeTransferGas
	if e.network.GasLimit != nil {
		gasLimit = *e.network.GasLimit
	}

	fee := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	required := new(big.Int).Add(value, fee)
	if balance.Cmp(required) < 0 {
		return nil, fmt.Errorf("insufficient balance: have %s wei, need %s wei (including fees)", balance, required)
	}

	return e.sign(ethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, nil))
}

func (e *EVMDepositor) erc20Transfer(ctx context.Context, to common.Address, tokenContract string, amount float64, nonce uint64, gasPrice *big.Int) (*ethtypes.Transaction, error) {
	if !common.IsHexAddress(tokenContract) {
		return nil, fmt.Errorf("invalid token contract address: %s", tokenContract)
	}
	tokenAddress := common.HexToAddress(tokenContract)

	decimals, err := e.erc20Decimals(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}

	value, err := parseAmount(formatAmount(amount), decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	balance, err := e.erc20Balance(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(value) < 0 {
		return nil, fmt.Errorf("insufficient token balance: have %s, need %s", balance, value)
	}

	data, err := e.erc20.Pack("transfer", to, value)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer data: %w", err)
	}

	gasLimit := erc20TransferGas
	if e.network.GasLimit != nil {
		gasLimit = *e.network.GasLimit
	} else {
		estimated, err := e.client.EstimateGas(ctx, ethereum.CallMsg{
			From: e.from,
			To:   &tokenAddress,
			Data: data,
		})
		if err == nil {
			gasLimit = estimated * 120 / 100 // 20% headroom
		}
	}

	return e.sign(ethtypes.NewTransaction(nonce, tokenAddress, big.NewInt(0), gasLimit, gasPrice, data))
}

func (e *EVMDepositor) sign(tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	signer := ethtypes.NewEIP155Signer(big.NewInt(e.network.ChainID))
	signed, err := ethtypes.SignTx(tx, signer, e.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// getGasPrice returns the configured gas price, or the node's suggestion
func (e *EVMDepositor) getGasPrice(ctx context.Context) (*big.Int, error) {
	if e.network.GasPrice != nil {
		return big.NewInt(*e.network.GasPrice), nil
	}

	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return gasPrice, nil
}

func (e *EVMDepositor) erc20Balance(ctx context.Context, token common.Address) (*big.Int, error) {
	out, err := e.callERC20(ctx, token, "balanceOf", e.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result %T", out[0])
	}
	return balance, nil
}

func (e *EVMDepositor) erc20Decimals(ctx context.Context, token common.Address) (int, error) {
	out, err := e.callERC20(ctx, token, "decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to get token decimals: %w", err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals result %T", out[0])
	}
	return int(decimals), nil
}

func (e *EVMDepositor) callERC20(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := e.erc20.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	result, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	out, err := e.erc20.Unpack(method, result)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	return out, nil
}

// Close closes the client connection
func (e *EVMDepositor) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// formatAmount renders a float without exponent so parseAmount can read it exactly
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// parseAmount converts a decimal string in whole units to base units with the given decimals.
// Digits beyond the token's precision are truncated.
func parseAmount(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("invalid amount format: %q", amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	value, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %q", amount)
	}
	return value, nil
}
