package service

import (
	"context"
	"time"
)

// DeviceGuard answers "can this device report now?". Timestamps are
// written by the storage layer inside the create/vote transactions, so
// the guard only reads.
type DeviceGuard struct {
	devices  DeviceRepository
	cooldown time.Duration
	now      func() time.Time
}

func NewDeviceGuard(devices DeviceRepository, cooldown time.Duration) *DeviceGuard {
	return &DeviceGuard{
		devices:  devices,
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (g *DeviceGuard) CanReport(ctx context.Context, deviceID string) (bool, error) {
	rec, err := g.devices.Get(ctx, deviceID)
	if err != nil {
		return false, err
	}
	return rec.CanReportAt(g.now().UTC(), g.cooldown), nil
}
