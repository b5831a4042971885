package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTxType is returned when a tx type string is neither "standard" nor "private"
var ErrInvalidTxType = errors.New("invalid tx type")

// TxType is the privacy mode of a swap
type TxType string

const (
	TxTypeStandard TxType = "standard"
	TxTypePrivate  TxType = "private"
)

// ParseTxType converts the wire string into a TxType
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case TxTypeStandard, TxTypePrivate:
		return TxType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTxType, s)
	}
}

func (t TxType) String() string {
	return string(t)
}

// Valid reports whether t is one of the known tx types
func (t TxType) Valid() bool {
	return t == TxTypeStandard || t == TxTypePrivate
}

func (t TxType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxType, string(t))
	}
	return json.Marshal(string(t))
}

func (t *TxType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tx_type must be a string: %w", err)
	}
	parsed, err := ParseTxType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TokenList groups the tokens supported on one network
type TokenList struct {
	Network      string      `json:"network"`
	NetworkImage string      `json:"network_image"`
	Tokens       []TokenInfo `json:"tokens"`
}

// TokenInfo describes a single swappable token
type TokenInfo struct {
	Token           string `json:"token"`
	Network         string `json:"network"`
	ContractAddress string `json:"contract_address"` // sentinel value for network-native tokens
	Image           string `json:"image"`
	IsNative        bool   `json:"is_native"`
}

// ConvertUsd holds the USD value of each side of a quote, when the server can price it
type ConvertUsd struct {
	From *float64 `json:"from"`
	To   *float64 `json:"to"`
}

// QuoteResponse is a point-in-time, non-binding estimate for a swap
type QuoteResponse struct {
	NetworkFrom         string     `json:"network_from"`
	ContractAddressFrom string     `json:"contract_address_from"`
	AmountFrom          float64    `json:"amount_from"`
	NetworkTo           string     `json:"network_to"`
	ContractAddressTo   string     `json:"contract_address_to"`
	AmountTo            float64    `json:"amount_to"`
	ConvertUsd          ConvertUsd `json:"convert_usd"`
	TxType              TxType     `json:"tx_type"`
}

// TransactionInfo is the server's record of a swap.
// Status is forwarded verbatim; the server's vocabulary is open-ended.
type TransactionInfo struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	TxType    TxType `json:"tx_type"`

	NetworkFrom         string `json:"network_from"`
	ContractAddressFrom string `json:"contract_address_from"`

	ContractAddressTo string `json:"contract_address_to"`
	NetworkTo         string `json:"network_to"`

	AmountFrom float64 `json:"amount_from"`
	AmountTo   float64 `json:"amount_to"`

	PayinAddress string  `json:"payin_address"`
	PayinExtraID *string `json:"payin_extra_id"`
	PayinHash    *string `json:"payin_hash"`

	PayoutAddress string  `json:"payout_address"`
	PayoutExtraID *string `json:"payout_extra_id"`
	PayoutHash    *string `json:"payout_hash"`

	ConvertUsd *float64 `json:"convert_usd"`

	Status string `json:"status"`
}

// CreatedTime returns CreatedAt as a time.Time
func (t *TransactionInfo) CreatedTime() time.Time {
	return time.Unix(t.CreatedAt, 0)
}

// FindToken looks up a token by symbol, optionally restricted to a network.
// An exact symbol match wins; otherwise the first token whose symbol contains the query is returned.
func FindToken(lists []TokenList, network, symbol string) (*TokenInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	network = strings.ToLower(strings.TrimSpace(network))
	if symbol == "" {
		return nil, fmt.Errorf("token symbol is required")
	}

	var partial *TokenInfo
	for i := range lists {
		if network != "" && strings.ToLower(lists[i].Network) != network {
			continue
		}
		for j := range lists[i].Tokens {
			token := &lists[i].Tokens[j]
			upper := strings.ToUpper(token.Token)
			if upper == symbol {
				return token, nil
			}
			if partial == nil && strings.Contains(upper, symbol) {
				partial = token
			}
		}
	}
	if partial != nil {
		return partial, nil
	}

	if network != "" {
		return nil, fmt.Errorf("token '%s' not found on network '%s'", symbol, network)
	}
	return nil, fmt.Errorf("token '%s' not found", symbol)
}
