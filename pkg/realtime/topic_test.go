package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("user_id=eq.u-1")
	require.NoError(t, err)
	assert.Equal(t, Filter{Column: "user_id", Value: "u-1"}, f)
	assert.Equal(t, "user_id=eq.u-1", f.String())

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	for _, bad := range []string{"user_id", "=eq.x", "user_id=neq.x", "user_id=u-1"} {
		_, err := ParseFilter(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilter_Matches(t *testing.T) {
	f := Filter{Column: "content_id", Value: "c1"}
	assert.True(t, f.Matches(Row{"content_id": "c1"}))
	assert.False(t, f.Matches(Row{"content_id": "c2"}))
	assert.False(t, f.Matches(Row{"user_id": "c1"}))
	assert.False(t, f.Matches(nil))

	rating := Filter{Column: "rating", Value: "5"}
	assert.True(t, rating.Matches(Row{"rating": float64(5)}))
}

func TestTopic_Matches(t *testing.T) {
	topic := Topic{
		Table:  "notifications",
		Filter: Filter{Column: "user_id", Value: "u1"},
		Events: []Event{EventInsert},
	}

	assert.True(t, topic.Matches(Change{Table: "notifications", Event: EventInsert, New: Row{"user_id": "u1"}}))
	assert.False(t, topic.Matches(Change{Table: "notifications", Event: EventUpdate, New: Row{"user_id": "u1"}}))
	assert.False(t, topic.Matches(Change{Table: "notifications", Event: EventInsert, New: Row{"user_id": "u2"}}))
	assert.False(t, topic.Matches(Change{Table: "feedback", Event: EventInsert, New: Row{"user_id": "u1"}}))

	all := Topic{Table: "favorites", Filter: Filter{Column: "user_id", Value: "u1"}, Events: []Event{EventAll}}
	assert.True(t, all.Matches(Change{Table: "favorites", Event: EventDelete, Old: Row{"user_id": "u1"}}))
}

func TestTopic_QueryRoundTrip(t *testing.T) {
	topic := Topic{
		Table:  "feedback",
		Filter: Filter{Column: "content_id", Value: "c1"},
		Events: []Event{EventInsert, EventUpdate},
	}

	decoded, err := TopicFromQuery(topic.Query())
	require.NoError(t, err)
	assert.Equal(t, topic, decoded)

	q := topic.Query()
	q.Set("events", "TRUNCATE")
	_, err = TopicFromQuery(q)
	assert.Error(t, err)

	q = topic.Query()
	q.Del("table")
	_, err = TopicFromQuery(q)
	assert.Error(t, err)
}

func TestNewChange(t *testing.T) {
	type favorite struct {
		UserID    string `json:"user_id"`
		ContentID string `json:"content_id"`
	}

	change, err := NewChange("favorites", EventDelete, nil, &favorite{UserID: "u1", ContentID: "c1"})
	require.NoError(t, err)
	assert.Nil(t, change.New)
	assert.Equal(t, "c1", change.Old["content_id"])
	assert.Equal(t, Row{"user_id": "u1", "content_id": "c1"}, change.Record())
	assert.False(t, change.CommitTimestamp.IsZero())
}
