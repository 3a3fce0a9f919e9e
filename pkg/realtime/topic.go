package realtime

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Filter is an equality predicate written as "column=eq.value". The zero
// Filter matches every row.
type Filter struct {
	Column string
	Value  string
}

func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Filter{}, nil
	}
	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return Filter{}, fmt.Errorf("invalid filter %q: want column=eq.value", s)
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return Filter{}, fmt.Errorf("invalid filter %q: only eq is supported", s)
	}
	return Filter{Column: column, Value: value}, nil
}

func (f Filter) IsZero() bool {
	return f.Column == ""
}

func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

func (f Filter) Matches(row Row) bool {
	if f.IsZero() {
		return true
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}

// Topic scopes a subscription to one table, an optional filter and a set of
// events. No events means all of them.
type Topic struct {
	Table  string
	Filter Filter
	Events []Event
}

func (t Topic) Validate() error {
	if t.Table == "" {
		return errors.New("topic needs a table")
	}
	for _, e := range t.Events {
		if _, err := ParseEvent(string(e)); err != nil {
			return err
		}
	}
	return nil
}

func (t Topic) wantsEvent(e Event) bool {
	if len(t.Events) == 0 {
		return true
	}
	for _, want := range t.Events {
		if want == EventAll || want == e {
			return true
		}
	}
	return false
}

func (t Topic) Matches(c Change) bool {
	return c.Table == t.Table && t.wantsEvent(c.Event) && t.Filter.Matches(c.Record())
}

// Query encodes the topic as url query values (table, filter, events).
func (t Topic) Query() url.Values {
	q := url.Values{}
	q.Set("table", t.Table)
	if !t.Filter.IsZero() {
		q.Set("filter", t.Filter.String())
	}
	if len(t.Events) > 0 {
		events := make([]string, len(t.Events))
		for i, e := range t.Events {
			events[i] = string(e)
		}
		q.Set("events", strings.Join(events, ","))
	}
	return q
}

// TopicFromQuery is the inverse of Query.
func TopicFromQuery(q url.Values) (Topic, error) {
	topic := Topic{Table: q.Get("table")}
	filter, err := ParseFilter(q.Get("filter"))
	if err != nil {
		return Topic{}, err
	}
	topic.Filter = filter
	if raw := q.Get("events"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			e, err := ParseEvent(part)
			if err != nil {
				return Topic{}, err
			}
			topic.Events = append(topic.Events, e)
		}
	}
	return topic, topic.Validate()
}
