// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events

import (
	"context"
	"time"
)

// Repository persists events.
type Repository interface {
	ListEvents(context context.Context, filter Filter, limit, offset int) ([]*Event, int, error)
	GetEvent(context context.Context, id int64) (*Event, error)
	CreateEvent(context context.Context, event *Event) error
	UpdateEvent(context context.Context, event *Event) error
	DeleteEvent(context context.Context, id int64) error

	// SweepStatuses advances time-driven statuses relative to now.
	SweepStatuses(context context.Context, now time.Time) (SweepResult, error)
}
