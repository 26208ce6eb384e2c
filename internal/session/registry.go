// Package session implements conversation-thread bookkeeping for an agent:
// normalizing the server's session list, driving the active-session
// lifecycle, and deriving titles for fresh sessions.
package session

import (
	"sort"
	"time"

	"agentic/internal/api"
)

// Status tags a list entry's reconciliation state against the backend.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Session is a normalized conversation thread.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Status    Status
	Raw       map[string]any
}

// DefaultTitle is shown for sessions the server returned without one.
const DefaultTitle = "New Chat"

// CanonicalID extracts a session record's identifier. It is the same
// fallback chain every record shares, so it delegates to api.RecordID.
// Returns "" when no id is present.
func CanonicalID(raw map[string]any) string {
	return api.RecordID(raw)
}

// Normalize turns raw session records into the canonical registry list:
// records without an extractable id are dropped, the rest are sorted newest
// first (missing timestamps sort as oldest) and deduplicated by canonical
// id, keeping the first occurrence. Pure and idempotent.
func Normalize(raw []map[string]any) []Session {
	sessions := make([]Session, 0, len(raw))
	for _, record := range raw {
		id := CanonicalID(record)
		if id == "" {
			continue
		}
		title := DefaultTitle
		if t, ok := record["title"].(string); ok && t != "" {
			title = t
		}
		sessions = append(sessions, Session{
			ID:        id,
			Title:     title,
			CreatedAt: createdAt(record),
			Status:    StatusConfirmed,
			Raw:       record,
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	seen := make(map[string]bool, len(sessions))
	unique := sessions[:0]
	for _, s := range sessions {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		unique = append(unique, s)
	}
	return unique
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func createdAt(record map[string]any) time.Time {
	for _, key := range []string{"createdAt", "created_at"} {
		switch v := record[key].(type) {
		case string:
			for _, layout := range timestampLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t
				}
			}
		case float64:
			// Unix timestamp, seconds or milliseconds.
			if v > 1e12 {
				return time.UnixMilli(int64(v)).UTC()
			}
			if v > 0 {
				return time.Unix(int64(v), 0).UTC()
			}
		}
	}
	return time.Time{}
}
