package chat

import (
	"sync"
	"time"

	"google.golang.org/genai"
)

const (
	// maxSessionContents caps how many contents (two per turn) a session
	// keeps. Oldest user/assistant pairs are dropped beyond this.
	maxSessionContents = 200

	// sessionTTL evicts sessions idle longer than this
	sessionTTL = 12 * time.Hour
)

// session holds one conversation history. mu serializes concurrent requests
// for the same session identifier; appends would interleave otherwise.
type session struct {
	mu        sync.Mutex
	contents  []*genai.Content
	updatedAt time.Time
}

// append records one completed turn (user question + final answer) and trims
// the history to the most recent turns
func (s *session) append(question, answer string) {
	s.contents = append(s.contents,
		genai.NewContentFromText(question, genai.RoleUser),
		genai.NewContentFromText(answer, genai.RoleModel),
	)
	if len(s.contents) > maxSessionContents {
		// Drop whole pairs so the history always starts with a user turn
		drop := len(s.contents) - maxSessionContents
		if drop%2 != 0 {
			drop++
		}
		s.contents = s.contents[drop:]
	}
	s.updatedAt = time.Now()
}

// history returns a copy of the session contents
func (s *session) history() []*genai.Content {
	out := make([]*genai.Content, len(s.contents))
	copy(out, s.contents)
	return out
}

// sessionStore keys sessions by identifier. Lookup and creation are guarded
// by the store mutex; per-session work is guarded by the session mutex.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
	}
}

// get returns the session for id, creating it on first use. Expired sessions
// are swept on each lookup.
func (st *sessionStore) get(id string) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	for key, s := range st.sessions {
		if key != id && now.Sub(s.updatedAt) > sessionTTL {
			delete(st.sessions, key)
		}
	}

	s, ok := st.sessions[id]
	if !ok {
		s = &session{updatedAt: now}
		st.sessions[id] = s
	}
	return s
}

// size returns the number of live sessions
func (st *sessionStore) size() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
