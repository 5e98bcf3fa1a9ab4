package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lwei/stockmon/internal/model"
)

// SearchStocks searches stocks by code or name. stockType may be empty.
func (c *Client) SearchStocks(ctx context.Context, keyword, stockType string) ([]model.StockInfo, error) {
	query := url.Values{}
	query.Set("q", keyword)
	if stockType != "" {
		query.Set("type", stockType)
	}

	var stocks []model.StockInfo
	if err := c.get(ctx, "/stocks/search", query, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// RealtimeQuote returns the live quote for a single stock code. Used by
// detail views that refresh one stock instead of the whole monitor list.
func (c *Client) RealtimeQuote(ctx context.Context, code string) (*model.RealtimeQuote, error) {
	var quote model.RealtimeQuote
	if err := c.get(ctx, fmt.Sprintf("/realtime/quote/%s", url.PathEscape(code)), nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// RealtimeStatus reports the health of the realtime quote service.
func (c *Client) RealtimeStatus(ctx context.Context) (*model.ServiceStatus, error) {
	var status model.ServiceStatus
	if err := c.get(ctx, "/realtime/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
