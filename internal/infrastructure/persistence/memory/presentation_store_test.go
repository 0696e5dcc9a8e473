package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"deckgen-ai-api/internal/domain/entity"
	apperrors "deckgen-ai-api/pkg/errors"
)

func newRecord(id string) *entity.PresentationRecord {
	content := &entity.Presentation{
		Name:   "演示 " + id,
		Slides: []entity.Slide{{Title: "首页"}},
	}
	return entity.NewPresentationRecord(id, "描述 "+id, content, []byte("pptx-"+id))
}

func TestStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)

	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "p1" || got.Content.Name != "演示 p1" {
		t.Errorf("unexpected record: %+v", got)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewPresentationStore(0)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrPresentationNotFound) {
		t.Fatalf("expected ErrPresentationNotFound, got %v", err)
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)

	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, newRecord("p1")); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestStoreCreateEmptyID(t *testing.T) {
	if err := NewPresentationStore(0).Create(context.Background(), newRecord("")); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)
	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}

	err := store.Update(ctx, "p1", func(record *entity.PresentationRecord) error {
		record.Content.Slides[0].Title = "改过的首页"
		record.Artifact = []byte("updated")
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content.Slides[0].Title != "改过的首页" || string(got.Artifact) != "updated" {
		t.Errorf("update not visible: %+v", got)
	}
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)
	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}

	before, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}

	err = store.Update(ctx, "p1", func(record *entity.PresentationRecord) error {
		record.Content.Slides[0].Title = "改过的首页"
		record.Artifact = []byte("v2")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// 先前取出的快照不受后续 Update 影响
	if before.Content.Slides[0].Title != "首页" {
		t.Errorf("snapshot title = %q, want %q", before.Content.Slides[0].Title, "首页")
	}
	if string(before.Artifact) != "pptx-p1" {
		t.Errorf("snapshot artifact = %q, want %q", before.Artifact, "pptx-p1")
	}

	// 修改快照不会写回存储
	before.Content.Slides[0].Title = "快照上的涂改"
	before.Artifact[0] = 'X'

	after, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if after.Content.Slides[0].Title != "改过的首页" || string(after.Artifact) != "v2" {
		t.Errorf("stored record corrupted by snapshot mutation: %+v", after)
	}
}

func TestStoreUpdateUnknown(t *testing.T) {
	store := NewPresentationStore(0)

	called := false
	err := store.Update(context.Background(), "missing", func(*entity.PresentationRecord) error {
		called = true
		return nil
	})
	if !errors.Is(err, apperrors.ErrPresentationNotFound) {
		t.Fatalf("expected ErrPresentationNotFound, got %v", err)
	}
	if called {
		t.Error("fn must not run for unknown id")
	}
}

func TestStoreUpdatePropagatesError(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)
	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("edit failed")
	if err := store.Update(ctx, "p1", func(*entity.PresentationRecord) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("Update() error = %v, want %v", err, wantErr)
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)
	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "p1"); !errors.Is(err, apperrors.ErrPresentationNotFound) {
		t.Error("record still present after delete")
	}
	// 未知 ID 静默返回
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(unknown) error = %v", err)
	}
}

func TestStoreEviction(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(3)

	for i := 0; i < 5; i++ {
		if err := store.Create(ctx, newRecord(fmt.Sprintf("p%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}
	// 最旧的两条被淘汰
	for _, id := range []string{"p0", "p1"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, apperrors.ErrPresentationNotFound) {
			t.Errorf("expected %s evicted, got %v", id, err)
		}
	}
	for _, id := range []string{"p2", "p3", "p4"} {
		if _, err := store.Get(ctx, id); err != nil {
			t.Errorf("expected %s present, got %v", id, err)
		}
	}
}

func TestStoreConcurrentGetSeesCompleteSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)
	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}

	// 写入方保持 Name 与 Artifact 成对，读取方必须观察到成对的快照
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			version := fmt.Sprintf("第%d版", i)
			_ = store.Update(ctx, "p1", func(record *entity.PresentationRecord) error {
				record.Content.Name = version
				record.Artifact = []byte(version)
				return nil
			})
		}
	}()

	for i := 0; i < 200; i++ {
		got, err := store.Get(ctx, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Content.Name != "演示 p1" && got.Content.Name != string(got.Artifact) {
			t.Fatalf("torn snapshot: name %q, artifact %q", got.Content.Name, got.Artifact)
		}
	}
	<-done
}

func TestStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewPresentationStore(0)
	if err := store.Create(ctx, newRecord("p1")); err != nil {
		t.Fatal(err)
	}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "p1", func(record *entity.PresentationRecord) error {
				record.Content.Slides = append(record.Content.Slides, entity.Slide{Title: "追加页"})
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Content.Slides) != 1+workers {
		t.Errorf("slides = %d, want %d", len(got.Content.Slides), 1+workers)
	}
}
