package db

import (
	"fmt"
	"time"

	"github.com/aydinov/lifecoach/internal/models"
)

// AddWaterLog records a drink of the given size.
func AddWaterLog(amountML int) (*models.WaterLog, error) {
	if amountML <= 0 {
		return nil, fmt.Errorf("amount_ml must be positive")
	}
	log := models.WaterLog{AmountML: amountML, Timestamp: time.Now()}
	if err := DB.Create(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// TodayWaterLogs returns today's entries and their total.
func TodayWaterLogs() ([]models.WaterLog, int, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var logs []models.WaterLog
	err := DB.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp").Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, l := range logs {
		total += l.AmountML
	}
	return logs, total, nil
}

// WaterHistory returns every entry, newest first.
func WaterHistory() ([]models.WaterLog, error) {
	var logs []models.WaterLog
	if err := DB.Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteWaterLog removes one entry.
func DeleteWaterLog(id uint) error {
	var log models.WaterLog
	if err := DB.First(&log, id).Error; err != nil {
		return fmt.Errorf("water log #%d: %w", id, ErrNotFound)
	}
	return DB.Delete(&log).Error
}
