package journal

import "time"

// Op identifies the kind of filesystem operation an entry records.
type Op string

// Operations recorded in the journal.
const (
	OpCreate     Op = "CREATE"
	OpDelete     Op = "DELETE"
	OpRename     Op = "RENAME"
	OpWrite      Op = "WRITE"
	OpTruncate   Op = "TRUNCATE"
	OpMetadata   Op = "METADATA"
	OpMount      Op = "MOUNT"
	OpUnmount    Op = "UNMOUNT"
	OpCheckpoint Op = "CHECKPOINT"
)

// Critical reports whether entries of this operation type must be flushed to
// disk immediately. Structural changes are durability-first; everything else
// waits for the next scheduled sync.
func (o Op) Critical() bool {
	switch o {
	case OpCreate, OpDelete, OpRename:
		return true
	}
	return false
}

// Known reports whether o is one of the recognized operation types.
func (o Op) Known() bool {
	switch o {
	case OpCreate, OpDelete, OpRename, OpWrite, OpTruncate,
		OpMetadata, OpMount, OpUnmount, OpCheckpoint:
		return true
	}
	return false
}

// Status is the lifecycle state of a journal entry. Transitions are one-way:
// PENDING may move to any terminal status, terminal statuses never change.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRolledBack Status = "ROLLED_BACK"
)

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s != StatusPending && s != ""
}

// Entry is one recorded intended or completed filesystem operation.
type Entry struct {
	ID            string         `json:"entry_id"`
	Timestamp     time.Time      `json:"timestamp"`
	Op            Op             `json:"operation_type"`
	Path          string         `json:"path"`
	Data          map[string]any `json:"data,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Status        Status         `json:"status"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Result        map[string]any `json:"result,omitempty"`
}

// payloadString returns the string value for key, consulting the operation
// data first and the completion result second.
func (e *Entry) payloadString(key string) string {
	if v, ok := e.Data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if v, ok := e.Result[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// payloadBool returns the bool value for key from data or result.
func (e *Entry) payloadBool(key string) bool {
	for _, m := range []map[string]any{e.Data, e.Result} {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// payloadInt64 returns the integer value for key from data or result.
// Values that round-tripped through JSON decode as float64.
func (e *Entry) payloadInt64(key string) (int64, bool) {
	for _, m := range []map[string]any{e.Data, e.Result} {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			return int64(n), true
		}
	}
	return 0, false
}

// cloneMap returns a shallow copy of m, or nil if m is empty.
func cloneMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
