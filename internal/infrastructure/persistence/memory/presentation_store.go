// Package memory 提供进程生命周期的内存存储实现
package memory

import (
	"context"
	"sync"

	"deckgen-ai-api/internal/domain/entity"
	"deckgen-ai-api/pkg/errors"
	"deckgen-ai-api/pkg/logger"
	"deckgen-ai-api/pkg/metrics"
)

// PresentationStore 并发安全的内存演示文稿存储
//
// 外层 RWMutex 保护映射本身；每条记录携带独立互斥锁，
// 同一 ID 上的 Update 串行执行，不同 ID 互不阻塞。
type PresentationStore struct {
	mu sync.RWMutex
	// records 按 ID 索引
	records map[string]*storeEntry
	// order 按创建顺序保存 ID，用于淘汰最旧记录
	order []string
	// maxEntries 容量上限，<=0 表示不限制
	maxEntries int
}

type storeEntry struct {
	mu     sync.Mutex
	record *entity.PresentationRecord
}

// NewPresentationStore 创建内存存储
func NewPresentationStore(maxEntries int) *PresentationStore {
	return &PresentationStore{
		records:    make(map[string]*storeEntry),
		maxEntries: maxEntries,
	}
}

// Create 写入新记录，超出容量时淘汰最旧的记录
func (s *PresentationStore) Create(ctx context.Context, record *entity.PresentationRecord) error {
	if record == nil || record.ID == "" {
		return errors.ErrInvalidParam.WithDetail("record id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; ok {
		return errors.New(errors.CodeInvalidParam, "presentation id already exists")
	}

	s.records[record.ID] = &storeEntry{record: record}
	s.order = append(s.order, record.ID)

	for s.maxEntries > 0 && len(s.records) > s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		if _, ok := s.records[oldest]; ok {
			delete(s.records, oldest)
			metrics.StoreEvictionsTotal.Inc()
			logger.Warn(ctx, "presentation evicted from store",
				"presentation_id", oldest,
				"max_presentations", s.maxEntries,
			)
		}
	}

	metrics.StoredPresentations.Set(float64(len(s.records)))
	return nil
}

// Get 返回记录的深拷贝快照，调用方读取时不受后续 Update 影响
func (s *PresentationStore) Get(ctx context.Context, id string) (*entity.PresentationRecord, error) {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.ErrPresentationNotFound
	}

	// 与进行中的 Update 互斥，拷贝在锁内完成
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record.Snapshot(), nil
}

// Update 在记录自身的互斥锁内执行 fn，实现同一 ID 的编辑串行化
func (s *PresentationStore) Update(ctx context.Context, id string, fn func(record *entity.PresentationRecord) error) error {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return errors.ErrPresentationNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.record)
}

// Delete 删除记录，未知 ID 静默返回
func (s *PresentationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.StoredPresentations.Set(float64(len(s.records)))
	return nil
}

// Len 返回当前记录数
func (s *PresentationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
