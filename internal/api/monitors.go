package api

import (
	"context"
	"fmt"

	"github.com/lwei/stockmon/internal/model"
)

// ListMonitors returns the user's monitor configurations without live
// quotes. This is the fallback data path of the sync engine.
func (c *Client) ListMonitors(ctx context.Context) ([]model.Monitor, error) {
	var monitors []model.Monitor
	if err := c.get(ctx, "/monitors/", nil, &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}

// RealtimeMonitors returns every monitor with live quote data plus the
// backend's trading-hours flag and cache lifetime. This is the primary data
// path of the sync engine.
func (c *Client) RealtimeMonitors(ctx context.Context) (*model.RealtimeMonitors, error) {
	var resp model.RealtimeMonitors
	if err := c.get(ctx, "/realtime/monitors", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateMonitor submits a new monitor configuration.
func (c *Client) CreateMonitor(ctx context.Context, req model.CreateMonitorRequest) (*model.Monitor, error) {
	var monitor model.Monitor
	if err := c.post(ctx, "/monitors/", req, &monitor); err != nil {
		return nil, err
	}
	return &monitor, nil
}

// UpdateMonitor submits a partial update for the monitor with the given id.
func (c *Client) UpdateMonitor(ctx context.Context, id int64, req model.UpdateMonitorRequest) (*model.Monitor, error) {
	var monitor model.Monitor
	if err := c.put(ctx, fmt.Sprintf("/monitors/%d/", id), req, &monitor); err != nil {
		return nil, err
	}
	return &monitor, nil
}

// DeleteMonitor removes the monitor with the given id.
func (c *Client) DeleteMonitor(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/monitors/%d/", id))
}
