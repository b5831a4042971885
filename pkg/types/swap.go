package types

// SwapRequest represents a user's swap command
type SwapRequest struct {
	Amount        float64
	SourceToken   string
	DestToken     string
	SourceNetwork string
	DestNetwork   string
	PayoutAddress string
	PayoutExtraID string
	Private       bool
	UseXMR        bool
}

// TxType returns the requested privacy mode
func (r *SwapRequest) TxType() TxType {
	if r.Private {
		return TxTypePrivate
	}
	return TxTypeStandard
}
