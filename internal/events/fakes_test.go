// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/madhouse/internal/events"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
	"github.com/taibuivan/madhouse/internal/platform/storage"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type memoryEvents struct {
	mu     sync.Mutex
	byID   map[int64]events.Event
	nextID int64
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{byID: map[int64]events.Event{}, nextID: 1}
}

func (store *memoryEvents) ListEvents(_ context.Context, filter events.Filter, limit, offset int) ([]*events.Event, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	matched := []*events.Event{}
	for _, event := range store.byID {
		if !filter.Matches(event.Status) {
			continue
		}
		copied := event
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if offset >= total {
		return []*events.Event{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (store *memoryEvents) GetEvent(_ context.Context, id int64) (*events.Event, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	event, ok := store.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &event, nil
}

func (store *memoryEvents) CreateEvent(_ context.Context, event *events.Event) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	event.ID = store.nextID
	event.CreatedAt = baseTime
	event.UpdatedAt = baseTime
	store.nextID++
	store.byID[event.ID] = *event
	return nil
}

func (store *memoryEvents) UpdateEvent(_ context.Context, event *events.Event) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.byID[event.ID]; !ok {
		return dberr.ErrNotFound
	}
	store.byID[event.ID] = *event
	return nil
}

func (store *memoryEvents) DeleteEvent(_ context.Context, id int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.byID[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(store.byID, id)
	return nil
}

func (store *memoryEvents) SweepStatuses(_ context.Context, now time.Time) (events.SweepResult, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var result events.SweepResult
	for id, event := range store.byID {
		if event.Status == events.StatusUpcoming && !event.StartDate.After(now) {
			event.Status = events.StatusOngoing
			result.ToOngoing++
			store.byID[id] = event
		}
	}
	for id, event := range store.byID {
		if event.Status == events.StatusOngoing && event.EndDate.Before(now) {
			event.Status = events.StatusCompleted
			result.ToCompleted++
			store.byID[id] = event
		}
	}
	return result, nil
}

// put stores an event directly, bypassing validation.
func (store *memoryEvents) put(event events.Event) int64 {
	_ = store.CreateEvent(context.Background(), &event)
	return event.ID
}

func (store *memoryEvents) status(id int64) events.Status {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.byID[id].Status
}

type fakeUploader struct {
	uploads []string
	err     error
}

func (uploader *fakeUploader) Upload(_ context.Context, data []byte, contentType string) (string, error) {
	if uploader.err != nil {
		return "", uploader.err
	}
	if contentType != "image/png" && contentType != "image/jpeg" {
		return "", storage.ErrUnsupportedType
	}
	uploader.uploads = append(uploader.uploads, contentType)
	return "https://cdn.madhouse.example/events/cover.png", nil
}

var errBucketGone = errors.New("s3: NoSuchBucket")

type eventsFixture struct {
	repo     *memoryEvents
	uploader *fakeUploader
	service  *events.Service
	now      time.Time
}

func newEventsFixture() *eventsFixture {
	f := &eventsFixture{
		repo:     newMemoryEvents(),
		uploader: &fakeUploader{},
		now:      baseTime,
	}
	f.service = events.NewService(f.repo, f.uploader, time.Second, events.WithClock(func() time.Time { return f.now }))
	return f
}
