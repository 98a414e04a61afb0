// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package events manages the public event calendar shown on the Madhouse site.

Reads are public. Writes sit behind the identity and verification guards.
A background [Sweeper] advances statuses as wall-clock time passes:

	UPCOMING  -> ONGOING    when startDate <= now
	ONGOING   -> COMPLETED  when endDate   <  now

CANCELLED is terminal and only ever set by an administrator.
*/
package events

import (
	"slices"
	"time"
)

// Status is the lifecycle state of an [Event].
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every valid status, in lifecycle order.
var Statuses = []string{
	string(StatusUpcoming),
	string(StatusOngoing),
	string(StatusCompleted),
	string(StatusCancelled),
}

// Valid reports whether status is one of the known values.
func (status Status) Valid() bool {
	switch status {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Event is a scheduled happening with an optional cover image.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Image       *string   `json:"image"`
	Status      Status    `json:"status"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows a paginated listing.
type Filter struct {
	Statuses []Status // empty means every status
}

// Matches reports whether status passes the filter.
func (filter Filter) Matches(status Status) bool {
	return len(filter.Statuses) == 0 || slices.Contains(filter.Statuses, status)
}

// SweepResult counts the rows moved by one status sweep.
type SweepResult struct {
	ToOngoing   int64
	ToCompleted int64
}

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldImage       = "image"
	FieldStatus      = "status"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
)

// MaxTitleLength bounds event titles.
const MaxTitleLength = 200
