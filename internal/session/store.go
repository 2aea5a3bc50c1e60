package session

import (
	"time"

	"github.com/patrickmn/go-cache"

	"comicai-web/internal/domain"
)

// キャッシュの掃除間隔
const cleanupInterval = 10 * time.Minute

// Store はセッションごとの最新の ComicRun を保持するインメモリストアです。
// 新しい実行の保存は前回の成果物を丸ごと置き換え、TTL超過で自動的に破棄されます。
type Store struct {
	runs *cache.Cache
}

// NewStore は指定されたTTLでストアを生成します。
func NewStore(ttl time.Duration) *Store {
	return &Store{
		runs: cache.New(ttl, cleanupInterval),
	}
}

// Put はセッションの最新実行を保存します。既存の実行は置き換えられます。
func (s *Store) Put(sessionID string, run *domain.ComicRun) {
	s.runs.Set(sessionID, run, cache.DefaultExpiration)
}

// Get はセッションの最新実行を返します。
func (s *Store) Get(sessionID string) (*domain.ComicRun, bool) {
	v, ok := s.runs.Get(sessionID)
	if !ok {
		return nil, false
	}
	run, ok := v.(*domain.ComicRun)
	return run, ok
}

// Delete はセッションの成果物を即座に破棄します。
func (s *Store) Delete(sessionID string) {
	s.runs.Delete(sessionID)
}
