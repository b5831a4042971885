package deposit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"fogswap/config"
	"fogswap/pkg/types"
)

// ErrMemoRequired is returned when the payin needs a memo/extra id, which auto-deposit does not attach
var ErrMemoRequired = errors.New("payin requires a memo; send the deposit manually")

// Request describes one payin transfer
type Request struct {
	Network         string
	ContractAddress string // token mint / contract, ignored when Native
	Native          bool
	Address         string
	ExtraID         *string
	Amount          float64
}

// RequestFromTransaction builds the payin transfer for a created swap
func RequestFromTransaction(info *types.TransactionInfo, native bool) Request {
	return Request{
		Network:         info.NetworkFrom,
		ContractAddress: info.ContractAddressFrom,
		Native:          native,
		Address:         info.PayinAddress,
		ExtraID:         info.PayinExtraID,
		Amount:          info.AmountFrom,
	}
}

// Depositor interface for blockchain-specific depositors
type Depositor interface {
	SendDeposit(ctx context.Context, req Request) (string, error)
	Close()
}

type chain int

const (
	chainUnknown chain = iota
	chainSolana
	chainEVM
	chainMonero
)

// Manager handles auto-deposit for different blockchains
type Manager struct {
	config config.AutoDepositConfig
	logger *zap.Logger
}

// NewManager creates a new deposit manager
func NewManager(cfg config.AutoDepositConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		config: cfg,
		logger: logger,
	}
}

// IsEnabled returns whether auto-deposit is enabled globally
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

func (m *Manager) chainOf(network string) chain {
	network = strings.ToLower(network)
	switch network {
	case "sol", "solana":
		return chainSolana
	case "xmr", "monero":
		return chainMonero
	}
	if _, ok := m.config.EVM.Networks[network]; ok {
		return chainEVM
	}
	return chainUnknown
}

// IsEnabledForNetwork returns whether auto-deposit is enabled for a Fogswap network name
func (m *Manager) IsEnabledForNetwork(network string) bool {
	if !m.config.Enabled {
		return false
	}

	switch m.chainOf(network) {
	case chainSolana:
		return m.config.Solana.Enabled
	case chainEVM:
		return m.config.EVM.Enabled
	case chainMonero:
		return m.config.Monero.Enabled
	default:
		return false
	}
}

// SendDeposit sends the payin and returns the chain transaction id
func (m *Manager) SendDeposit(ctx context.Context, req Request) (string, error) {
	if !m.IsEnabled() {
		return "", fmt.Errorf("auto-deposit is not enabled in configuration")
	}
	if !m.IsEnabledForNetwork(req.Network) {
		return "", fmt.Errorf("auto-deposit is not enabled for network: %s", req.Network)
	}
	if req.ExtraID != nil && *req.ExtraID != "" {
		return "", ErrMemoRequired
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("invalid deposit amount: %v", req.Amount)
	}

	depositor, err := m.depositorFor(req.Network)
	if err != nil {
		return "", err
	}
	defer depositor.Close()

	m.logger.Debug("sending deposit",
		zap.String("network", req.Network),
		zap.String("address", req.Address),
		zap.Float64("amount", req.Amount),
		zap.Bool("native", req.Native),
	)

	txid, err := depositor.SendDeposit(ctx, req)
	if err != nil {
		return "", err
	}

	m.logger.Info("deposit sent", zap.String("network", req.Network), zap.String("txid", txid))
	return txid, nil
}

func (m *Manager) depositorFor(network string) (Depositor, error) {
	switch m.chainOf(network) {
	case chainSolana:
		return NewSolanaDepositor(m.config.Solana)
	case chainEVM:
		return NewEVMDepositor(m.config.EVM, strings.ToLower(network))
	case chainMonero:
		return NewMoneroDepositor(m.config.Monero), nil
	default:
		return nil, fmt.Errorf("auto-deposit not supported for network: %s", network)
	}
}

// SupportedNetworks returns the networks that currently accept auto-deposit
func (m *Manager) SupportedNetworks() []string {
	supported := make([]string, 0)
	if !m.config.Enabled {
		return supported
	}

	if m.config.Solana.Enabled {
		supported = append(supported, "sol")
	}
	if m.config.Monero.Enabled {
		supported = append(supported, "xmr")
	}
	if m.config.EVM.Enabled {
		networks := make([]string, 0, len(m.config.EVM.Networks))
		for name := range m.config.EVM.Networks {
			networks = append(networks, name)
		}
		sort.Strings(networks)
		supported = append(supported, networks...)
	}

	return supported
}
