package solscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"rai-agent/internal/domain"
	"rai-agent/internal/format"
)

// ErrNoMetadata is returned when the provider answers 200 without a data object.
var ErrNoMetadata = fmt.Errorf("solscan: token metadata is empty: %w", domain.ErrEmptyResult)

type metadataEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// tokenMeta is the subset of /token/meta the relay uses. Numeric fields come
// back as numbers or strings depending on magnitude, hence number.
type tokenMeta struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Icon        string `json:"icon"`
	Supply      number `json:"supply"`
	Holder      number `json:"holder"`
	Creator     string `json:"creator"`
	CreatedTime any    `json:"created_time"`
	MarketCap   number `json:"market_cap"`
	Metadata    struct {
		Description string `json:"description"`
		Website     string `json:"website"`
		Twitter     string `json:"twitter"`
	} `json:"metadata"`
}

// FetchMetadata returns the normalized metadata of the token at address.
func (c *Client) FetchMetadata(ctx context.Context, address string) (domain.TokenInfo, error) {
	raw, err := c.get(ctx, "/token/meta", url.Values{"address": {address}})
	if err != nil {
		return domain.TokenInfo{}, err
	}

	var env metadataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.TokenInfo{}, fmt.Errorf("%w: solscan: decode metadata response: %w", domain.ErrEmptyResult, err)
	}
	if (env.Success != nil && !*env.Success) || isEmptyObject(env.Data) {
		return domain.TokenInfo{}, ErrNoMetadata
	}

	var meta tokenMeta
	if err := json.Unmarshal(env.Data, &meta); err != nil {
		return domain.TokenInfo{}, fmt.Errorf("%w: solscan: decode token metadata: %w", domain.ErrEmptyResult, err)
	}
	return toTokenInfo(meta), nil
}

func isEmptyObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return true
	}
	return len(fields) == 0
}

// toTokenInfo is the single place provider defaults are applied.
func toTokenInfo(m tokenMeta) domain.TokenInfo {
	supply := m.Supply.Float64()
	marketCap := m.MarketCap.Float64()
	return domain.TokenInfo{
		Name:                 orUnknown(m.Name),
		Symbol:               orUnknown(m.Symbol),
		IconURL:              strings.TrimSpace(m.Icon),
		TotalSupply:          supply,
		TotalSupplyFormatted: format.Magnitude(supply),
		HolderCount:          m.Holder.Int64(),
		Creator:              orUnknown(m.Creator),
		CreatedTime:          toNumber(m.CreatedTime).Int64(),
		CreatedTimeFormatted: format.Timestamp(m.CreatedTime),
		MarketCap:            marketCap,
		MarketCapFormatted:   format.Magnitude(marketCap),
		Description:          strings.TrimSpace(m.Metadata.Description),
		Website:              strings.TrimSpace(m.Metadata.Website),
		Twitter:              strings.TrimSpace(m.Metadata.Twitter),
	}
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Unknown
	}
	return s
}
