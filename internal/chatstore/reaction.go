package chatstore

import (
	"sync"

	"github.com/mistcall/strangerchat/internal/types"
)

// ReactionSummary is one emoji's reactor list, shaped for the
// reaction_updated payload (spec §4.3).
type ReactionSummary struct {
	Emoji string           `json:"emoji"`
	Users []types.Username `json:"users"`
	Count int              `json:"count"`
}

// ReactionStore is the Reaction Store: message ID -> emoji -> set of
// usernames, enforcing one reaction per user per message (spec §3).
type ReactionStore struct {
	mu        sync.Mutex
	reactions map[string]map[string]map[types.Username]struct{}
}

// NewReactionStore creates an empty Reaction Store.
func NewReactionStore() *ReactionStore {
	return &ReactionStore{
		reactions: make(map[string]map[string]map[types.Username]struct{}),
	}
}

// Add records a reaction, first removing any existing reaction by the same
// user on the same message (spec §4.3: one emoji per user per message).
func (r *ReactionStore) Add(messageID string, user types.Username, emoji string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeUserLocked(messageID, user)

	byEmoji, ok := r.reactions[messageID]
	if !ok {
		byEmoji = make(map[string]map[types.Username]struct{})
		r.reactions[messageID] = byEmoji
	}
	users, ok := byEmoji[emoji]
	if !ok {
		users = make(map[types.Username]struct{})
		byEmoji[emoji] = users
	}
	users[user] = struct{}{}
}

// Remove deletes the given user's reaction of the given emoji on a
// message. No-op if it doesn't exist.
func (r *ReactionStore) Remove(messageID string, user types.Username, emoji string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byEmoji, ok := r.reactions[messageID]
	if !ok {
		return
	}
	users, ok := byEmoji[emoji]
	if !ok {
		return
	}
	delete(users, user)
	if len(users) == 0 {
		delete(byEmoji, emoji)
	}
	if len(byEmoji) == 0 {
		delete(r.reactions, messageID)
	}
}

// removeUserLocked strips any existing reaction by user on messageID,
// regardless of emoji. Caller holds the lock.
func (r *ReactionStore) removeUserLocked(messageID string, user types.Username) {
	byEmoji, ok := r.reactions[messageID]
	if !ok {
		return
	}
	for emoji, users := range byEmoji {
		if _, has := users[user]; has {
			delete(users, user)
			if len(users) == 0 {
				delete(byEmoji, emoji)
			}
		}
	}
	if len(byEmoji) == 0 {
		delete(r.reactions, messageID)
	}
}

// Summaries returns the current reactions on a message, shaped for the
// reaction_updated broadcast.
func (r *ReactionStore) Summaries(messageID string) []ReactionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	byEmoji, ok := r.reactions[messageID]
	if !ok {
		return nil
	}

	out := make([]ReactionSummary, 0, len(byEmoji))
	for emoji, users := range byEmoji {
		names := make([]types.Username, 0, len(users))
		for u := range users {
			names = append(names, u)
		}
		out = append(out, ReactionSummary{Emoji: emoji, Users: names, Count: len(names)})
	}
	return out
}
