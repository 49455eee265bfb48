package session

import (
	"context"
	"sync"
	"time"

	"github.com/kenta/memoya/internal/model"
)

// MemoryStore はインメモリのセッションストア。
// 単一インスタンス構成のデフォルト実装で、期限切れレコードは
// 読み取り時に遅延削除する（能動的な退避タイマーは持たない）。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session

	// now はテスト用に差し替え可能な時刻源。
	now func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

// Create はセッションレコードを保存する。
// 構文的に正しいトークンを持たないレコードは拒否する。
func (s *MemoryStore) Create(_ context.Context, session *model.Session) error {
	if err := validateRecord(session); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

// FindByID はセッションレコードを取得する。
// 存在しない場合と期限切れの場合は (nil, nil) を返す。
// 期限切れレコードはこの読み取りのタイミングで削除される。
func (s *MemoryStore) FindByID(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if !session.ExpiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}

	copied := *session
	return &copied, nil
}

// DeleteByID はセッションレコードを削除する。
// 存在しないIDに対してもエラーにはしない。
func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len は現在保持しているセッション数を返す。テスト用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
