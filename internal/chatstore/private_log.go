package chatstore

import (
	"sync"
	"time"

	"github.com/mistcall/strangerchat/internal/types"
)

// PrivateMessage is one entry in a Private Conversation Log.
type PrivateMessage struct {
	ID        string
	FromID    types.ConnID
	FromUser  types.Username
	ToID      types.ConnID
	ToUser    types.Username
	Content   string
	Timestamp time.Time
}

// PrivateLog is the append-only, per-pair conversation history keyed by
// the ordered pair of session IDs (spec §2.6, §3).
type PrivateLog struct {
	mu  sync.Mutex
	log map[string][]PrivateMessage
}

// NewPrivateLog creates an empty Private Conversation Log.
func NewPrivateLog() *PrivateLog {
	return &PrivateLog{log: make(map[string][]PrivateMessage)}
}

// Append adds a directed private message under the sender/recipient's
// ordered-pair key.
func (l *PrivateLog) Append(msg PrivateMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := types.OrderedPairKey(msg.FromID, msg.ToID)
	l.log[key] = append(l.log[key], msg)
}

// Conversation returns the ordered history between two sessions.
func (l *PrivateLog) Conversation(a, b types.ConnID) []PrivateMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := types.OrderedPairKey(a, b)
	history := l.log[key]
	out := make([]PrivateMessage, len(history))
	copy(out, history)
	return out
}
