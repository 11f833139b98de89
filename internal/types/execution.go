package types

import "math/big"

// RouteHop describes one leg of a swap route. PoolFee is the pool's fee in
// hundredths of a basis point for venues with tiered pools, zero otherwise.
type RouteHop struct {
	Venue    string `json:"venue"`
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	PoolFee  int64  `json:"pool_fee,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// RouteCandidate is a single venue's answer to a quote request. It is
// request-scoped and never persisted.
type RouteCandidate struct {
	VenueID   string     `json:"venue_id"`
	AmountIn  *big.Int   `json:"amount_in"`
	AmountOut *big.Int   `json:"amount_out"`
	Hops      []RouteHop `json:"hops"`
}

// CallSpec is a single contract call ready for submission.
type CallSpec struct {
	To    string   `json:"to"`
	Data  []byte   `json:"data"`
	Value *big.Int `json:"value"`
}

// QuoteResult is the aggregated best route plus the calls needed to execute it.
type QuoteResult struct {
	Best         *RouteCandidate `json:"best"`
	MinAmountOut *big.Int        `json:"min_amount_out"`
	Calls        []CallSpec      `json:"calls"`
}

// ExecutionResult reports whatever a delegated execution achieved. A failed
// swap leg after a successful transfer still carries the transfer hash.
type ExecutionResult struct {
	Success        bool   `json:"success"`
	TransferTxHash string `json:"transfer_tx_hash,omitempty"`
	SwapTxHash     string `json:"swap_tx_hash,omitempty"`
	AmountIn       string `json:"amount_in,omitempty"`
	AmountOut      string `json:"amount_out,omitempty"`
	SourceToken    string `json:"source_token,omitempty"`
	TargetToken    string `json:"target_token,omitempty"`
	Error          string `json:"error,omitempty"`
}
