package client

import "sync"

// Tokens is the credential pair handed out by login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenStore keeps the current session tokens between calls.
type TokenStore interface {
	Tokens() (Tokens, bool)
	SetTokens(Tokens)
	Clear()
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens Tokens
	set    bool
}

// NewMemoryTokenStore returns an empty store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Tokens() (Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.set
}

func (s *MemoryTokenStore) SetTokens(tokens Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	s.set = true
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.set = false
}
