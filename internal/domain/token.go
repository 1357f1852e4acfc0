package domain

import "errors"

// Unknown is the display value used when a provider omits a text field.
const Unknown = "Unknown"

// ErrEmptyResult marks a provider call that succeeded at the HTTP level but
// carried no usable payload. Integration sentinels wrap it.
var ErrEmptyResult = errors.New("upstream returned no usable payload")

// TokenInfo is the normalized token metadata record. Every field is populated
// during mapping; nothing here is ever nil or absent.
type TokenInfo struct {
	Name                 string  `json:"name"`
	Symbol               string  `json:"symbol"`
	IconURL              string  `json:"icon_url"`
	TotalSupply          float64 `json:"total_supply"`
	TotalSupplyFormatted string  `json:"total_supply_formatted"`
	HolderCount          int64   `json:"holder_count"`
	Creator              string  `json:"creator"`
	CreatedTime          int64   `json:"created_time"`
	CreatedTimeFormatted string  `json:"created_time_formatted"`
	MarketCap            float64 `json:"market_cap"`
	MarketCapFormatted   string  `json:"market_cap_formatted"`
	Description          string  `json:"description"`
	Website              string  `json:"website"`
	Twitter              string  `json:"twitter"`
}

// TransferRecord is a single token transfer, as returned by the transfer
// listing provider.
type TransferRecord struct {
	TxID        string  `json:"tx_id"`
	Timestamp   int64   `json:"timestamp"`
	FromAddress string  `json:"from_address"`
	ToAddress   string  `json:"to_address"`
	Amount      float64 `json:"amount"`
	Value       float64 `json:"value"`
}

// TokenAnalysis is the assembled result for a query that contained a
// resolvable contract address. Optional parts are set depending on the
// analysis mode.
type TokenAnalysis struct {
	ContractAddress  string
	TokenInfo        TokenInfo
	FirstTransfers   []TransferRecord
	SupplyPercentage *float64
	Narrative        string
}

// Amounts returns the amount column of the given transfers.
func Amounts(transfers []TransferRecord) []float64 {
	out := make([]float64, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, t.Amount)
	}
	return out
}
