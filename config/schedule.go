package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/wheelsched/core/validate"
)

// ScheduleConfig points at the reference datasets and fixes the planning zone.
type ScheduleConfig struct {
	OrdersPath   string `json:"orders_path"`
	SchedulePath string `json:"schedule_path"`
	// Timezone is an IANA zone used for naive timestamps and relative dates.
	Timezone string `json:"timezone"`
	// DefaultMoveTime is used when a move names a date without a time.
	DefaultMoveTime string `json:"default_move_time"`
}

const DefaultTimezone = "Asia/Makassar"

func (c *ScheduleConfig) SetDefaults() {
	if c.OrdersPath == "" {
		c.OrdersPath = "scooter_orders.csv"
	}
	if c.SchedulePath == "" {
		c.SchedulePath = "scooter_schedule.csv"
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.DefaultMoveTime == "" {
		c.DefaultMoveTime = validate.DefaultMoveTime
	}
}

func (c ScheduleConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", c.DefaultMoveTime); err != nil {
		return fmt.Errorf("default_move_time must be HH:MM: %q", c.DefaultMoveTime)
	}
	return nil
}

// Location loads the configured zone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
