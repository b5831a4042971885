package deposit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"fogswap/config"
)

const (
	lamportsPerSOL = 1e9
	// Solana fees are typically 5000 lamports per signature
	solanaFeeLamports = 5000
	// decimals byte offset in an SPL mint account
	mintDecimalsOffset = 44
)

// SolanaDepositor handles deposits on Solana blockchain
type SolanaDepositor struct {
	config     config.SolanaConfig
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewSolanaDepositor creates a new Solana depositor
func NewSolanaDepositor(cfg config.SolanaConfig) (*SolanaDepositor, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for Solana")
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaDepositor{
		config:     cfg,
		client:     rpc.New(cfg.RPCUrl),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// SendDeposit sends native SOL, or the SPL token whose mint is req.ContractAddress
func (s *SolanaDepositor) SendDeposit(ctx context.Context, req Request) (string, error) {
	recipient, err := solana.PublicKeyFromBase58(req.Address)
	if err != nil {
		return "", fmt.Errorf("invalid payin address: %w", err)
	}

	var signature solana.Signature
	if req.Native {
		signature, err = s.sendNativeSOL(ctx, recipient, req.Amount)
	} else {
		signature, err = s.sendSPLToken(ctx, recipient, req.ContractAddress, req.Amount)
	}
	if err != nil {
		return "", err
	}

	return signature.String(), nil
}

func (s *SolanaDepositor) sendNativeSOL(ctx context.Context, recipient solana.PublicKey, amount float64) (solana.Signature, error) {
	lamports := uint64(math.Round(amount * lamportsPerSOL))

	balance, err := s.getBalance(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	minRequired := lamports + solanaFeeLamports
	if balance < minRequired {
		return solana.Signature{}, fmt.Errorf("insufficient balance: have %.9f SOL, need %.9f SOL (including fees)",
			float64(balance)/lamportsPerSOL, float64(minRequired)/lamportsPerSOL)
	}

	instruction := system.NewTransferInstruction(
		lamports,
		s.publicKey,
		recipient,
	).Build()

	return s.signAndSend(ctx, []solana.Instruction{instruction})
}

func (s *SolanaDepositor) sendSPLToken(ctx context.Context, recipient solana.PublicKey, mintAddress string, amount float64) (solana.Signature, error) {
	tokenMint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("invalid token mint address: %w", err)
	}

	decimals, err := s.getTokenDecimals(ctx, tokenMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get token decimals: %w", err)
	}

	multiplier := math.Pow10(int(decimals))
	tokenAmount := uint64(math.Round(amount * multiplier))

	sourceTokenAccount, err := s.getAssociatedTokenAddress(s.publicKey, tokenMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get source token account: %w", err)
	}

	balance, err := s.getTokenBalance(ctx, sourceTokenAccount)
	if err != nil {
		return solana.Signature{}, err
	}
	if balance < tokenAmount {
		return solana.Signature{}, fmt.Errorf("insufficient token balance: have %f, need %f",
			float64(balance)/multiplier, float64(tokenAmount)/multiplier)
	}

	destTokenAccount, err := s.getAssociatedTokenAddress(recipient, tokenMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get destination token account: %w", err)
	}

	destAccountExists, err := s.accountExists(ctx, destTokenAccount)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to check destination account: %w", err)
	}

	instructions := []solana.Instruction{}
	if !destAccountExists {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			s.publicKey, // payer
			recipient,   // wallet
			tokenMint,   // mint
		).Build())
	}

	instructions = append(instructions, token.NewTransferInstruction(
		tokenAmount,
		sourceTokenAccount,
		destTokenAccount,
		s.publicKey,
		[]solana.PublicKey{}, // no multisig
	).Build())

	return s.signAndSend(ctx, instructions)
}

func (s *SolanaDepositor) signAndSend(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	recent, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(s.publicKey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       s.config.SkipPreflight,
		PreflightCommitment: commitment(s.config.Commitment),
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}

// getBalance returns the SOL balance in lamports
func (s *SolanaDepositor) getBalance(ctx context.Context) (uint64, error) {
	balance, err := s.client.GetBalance(ctx, s.publicKey, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance.Value, nil
}

// getTokenBalance returns the raw token balance of a token account
func (s *SolanaDepositor) getTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error) {
	accountInfo, err := s.client.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}

	amount, err := strconv.ParseUint(accountInfo.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance: %w", err)
	}
	return amount, nil
}

func (s *SolanaDepositor) getTokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	accountInfo, err := s.client.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint account info: %w", err)
	}
	if accountInfo.Value == nil {
		return 0, fmt.Errorf("mint account not found")
	}

	data := accountInfo.Value.Data.GetBinary()
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("invalid mint account data")
	}
	return data[mintDecimalsOffset], nil
}

func (s *SolanaDepositor) getAssociatedTokenAddress(wallet solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return addr, nil
}

func (s *SolanaDepositor) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	accountInfo, err := s.client.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return accountInfo.Value != nil, nil
}

// Close closes any open connections
func (s *SolanaDepositor) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

// commitment maps the configured commitment level, defaulting to confirmed
func commitment(level string) rpc.CommitmentType {
	switch strings.ToLower(level) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
