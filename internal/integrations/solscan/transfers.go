package solscan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"rai-agent/internal/domain"
)

const transferActivity = "ACTIVITY_SPL_TRANSFER"

// ErrNoTransfers is returned when the provider lists no transfers for a token.
var ErrNoTransfers = fmt.Errorf("solscan: no transfer data: %w", domain.ErrEmptyResult)

type transferItem struct {
	TransID     string `json:"trans_id"`
	BlockTime   number `json:"block_time"`
	Time        string `json:"time"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      number `json:"amount"`
	Value       number `json:"value"`
}

// FetchEarlyTransfers returns the first count transfers of the token at
// address, oldest first. Only the first page is requested.
func (c *Client) FetchEarlyTransfers(ctx context.Context, address string, count int) ([]domain.TransferRecord, error) {
	if count <= 0 {
		return nil, errors.New("solscan: transfer count must be positive")
	}
	raw, err := c.get(ctx, "/token/transfer", url.Values{
		"address":         {address},
		"activity_type[]": {transferActivity},
		"page":            {"1"},
		"page_size":       {strconv.Itoa(count)},
		"sort_by":         {"block_time"},
		"sort_order":      {"asc"},
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeTransfers(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: solscan: decode transfers: %w", domain.ErrEmptyResult, err)
	}
	if len(items) == 0 {
		return nil, ErrNoTransfers
	}
	if len(items) > count {
		items = items[:count]
	}

	out := make([]domain.TransferRecord, 0, len(items))
	for _, it := range items {
		out = append(out, domain.TransferRecord{
			TxID:        it.TransID,
			Timestamp:   it.timestamp(),
			FromAddress: it.FromAddress,
			ToAddress:   it.ToAddress,
			Amount:      it.Amount.Float64(),
			Value:       it.Value.Float64(),
		})
	}
	return out, nil
}

// decodeTransfers accepts the documented {"data": [...]} envelope as well as
// a bare array.
func decodeTransfers(raw []byte) ([]transferItem, error) {
	trimmed := bytes.TrimSpace(raw)
	var items []transferItem
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var env struct {
		Data []transferItem `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (t transferItem) timestamp() int64 {
	if sec := t.BlockTime.Int64(); sec != 0 {
		return sec
	}
	if parsed, err := time.Parse(time.RFC3339, t.Time); err == nil {
		return parsed.Unix()
	}
	return 0
}
