// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"deckgen-ai-api/internal/domain/entity"
)

// PresentationStore 演示文稿存储接口
//
// 同一 ID 上的 Update 调用必须串行执行：回调内完成"读内容 -> 计算替换 ->
// 写回 -> 重渲染"的完整临界区，渲染观察到的内容快照保证完整。
type PresentationStore interface {
	// Create 写入新记录；ID 已存在时返回错误
	Create(ctx context.Context, record *entity.PresentationRecord) error

	// Get 返回记录的深拷贝快照；未知 ID 返回 ErrPresentationNotFound
	Get(ctx context.Context, id string) (*entity.PresentationRecord, error)

	// Update 在该 ID 的串行临界区内执行 fn；fn 返回错误时记录保持原状。
	// 未知 ID 返回 ErrPresentationNotFound 且不调用 fn。
	Update(ctx context.Context, id string, fn func(record *entity.PresentationRecord) error) error

	// Delete 删除记录；未知 ID 静默返回
	Delete(ctx context.Context, id string) error

	// Len 返回当前记录数
	Len() int
}
