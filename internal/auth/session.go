package auth

import (
	"context"
	"sync"
	"time"
)

// SessionRecord はクライアントのセッションIDに紐づくサーバー側の状態です。
type SessionRecord struct {
	ID         string
	Authorized bool
	Username   string
	Token      string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// SessionStore はセッション状態を保持します。
type SessionStore interface {
	Get(ctx context.Context, id string) (SessionRecord, bool)
	// Put は id のレコードを丸ごと置き換えます。
	Put(ctx context.Context, record SessionRecord)
	Delete(ctx context.Context, id string)
	// DeleteIfToken は保持しているトークンが token と一致する場合だけ削除します。
	DeleteIfToken(ctx context.Context, id, token string) bool
}

// MemorySessionStore はプロセス内の SessionStore 実装です。
type MemorySessionStore struct {
	mu      sync.RWMutex
	records map[string]SessionRecord
}

// NewMemorySessionStore は空のストアを作成します。
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		records: make(map[string]SessionRecord),
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (SessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	return record, ok
}

func (s *MemorySessionStore) Put(ctx context.Context, record SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

func (s *MemorySessionStore) DeleteIfToken(ctx context.Context, id, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok || record.Token != token {
		return false
	}
	delete(s.records, id)
	return true
}

// PurgeExpired は期限から grace 以上過ぎたレコードを削除し、削除件数を返します。
// grace の間は Authorize が期限切れとして応答できるようレコードを残します。
func (s *MemorySessionStore) PurgeExpired(ctx context.Context, now time.Time, grace time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, record := range s.records {
		if !record.ExpiresAt.IsZero() && !now.Before(record.ExpiresAt.Add(grace)) {
			delete(s.records, id)
			purged++
		}
	}
	return purged
}

// Len は保持しているレコード数を返します。
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// RunJanitor は ctx が終了するまで interval ごとに、期限から interval 以上過ぎたレコードを削除します。
func (s *MemorySessionStore) RunJanitor(ctx context.Context, interval time.Duration, now func() time.Time) {
	if interval <= 0 {
		return
	}
	if now == nil {
		now = time.Now
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PurgeExpired(ctx, now(), interval)
		}
	}
}
