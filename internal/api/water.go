package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// WaterLog is one recorded drink.
type WaterLog struct {
	ID        int       `json:"id"`
	AmountML  int       `json:"amount_ml"`
	Timestamp time.Time `json:"timestamp"`
}

// WaterStats is today's running total.
type WaterStats struct {
	TodayTotal int        `json:"today_total"`
	Entries    []WaterLog `json:"entries"`
}

type waterBody struct {
	AmountML int `json:"amount_ml"`
}

// AddWater records a drink of the given size.
func (c *Client) AddWater(ctx context.Context, amountML int) (WaterLog, error) {
	var log WaterLog
	if err := c.do(ctx, http.MethodPost, "/api/water/", waterBody{AmountML: amountML}, &log); err != nil {
		return WaterLog{}, err
	}
	return log, nil
}

// WaterToday returns today's entries and total.
func (c *Client) WaterToday(ctx context.Context) (WaterStats, error) {
	var stats WaterStats
	if err := c.do(ctx, http.MethodGet, "/api/water/", nil, &stats); err != nil {
		return WaterStats{}, err
	}
	return stats, nil
}

// WaterHistory returns every entry, newest first.
func (c *Client) WaterHistory(ctx context.Context) ([]WaterLog, error) {
	var logs []WaterLog
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteWater removes one entry by id.
func (c *Client) DeleteWater(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/water/%d", id), nil, nil)
}
