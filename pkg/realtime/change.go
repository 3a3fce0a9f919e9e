// Package realtime carries row-change events from the services to
// subscribers. Writers publish a Change per committed row; a Manager owns at
// most one subscription to a filtered per-table stream and dispatches the
// matching changes to a callback.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Event string

const (
	EventInsert Event = "INSERT"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
	EventAll    Event = "*"
)

func ParseEvent(s string) (Event, error) {
	switch e := Event(strings.ToUpper(strings.TrimSpace(s))); e {
	case EventInsert, EventUpdate, EventDelete, EventAll:
		return e, nil
	}
	return "", fmt.Errorf("unknown event %q", s)
}

type Row map[string]interface{}

type Change struct {
	Table           string    `json:"table"`
	Event           Event     `json:"event"`
	New             Row       `json:"new,omitempty"`
	Old             Row       `json:"old,omitempty"`
	CommitTimestamp time.Time `json:"commit_timestamp"`
}

// Record returns the row a filter applies to: the new image, or the old one
// for deletes.
func (c Change) Record() Row {
	if c.Event == EventDelete {
		return c.Old
	}
	return c.New
}

// NewChange snapshots the given records into a change. Either record may be
// nil.
func NewChange(table string, event Event, newRecord, oldRecord interface{}) (Change, error) {
	change := Change{
		Table:           table,
		Event:           event,
		CommitTimestamp: time.Now().UTC(),
	}
	var err error
	if change.New, err = toRow(newRecord); err != nil {
		return Change{}, err
	}
	if change.Old, err = toRow(oldRecord); err != nil {
		return Change{}, err
	}
	return change, nil
}

func toRow(record interface{}) (Row, error) {
	if record == nil {
		return nil, nil
	}
	if row, ok := record.(Row); ok {
		return row, nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var row Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return row, nil
}

// Publisher announces committed row changes.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Source opens change streams scoped to a topic.
type Source interface {
	Open(ctx context.Context, topic Topic) (Channel, error)
}

// Channel is an open change stream. Changes is closed once the channel is
// closed or the underlying transport dies.
type Channel interface {
	Changes() <-chan Change
	Close() error
}

// NopPublisher drops every change.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Change) error { return nil }
