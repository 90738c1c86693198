package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xilidan/s2t-translator/services/translation/entity"
)

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := New()

	run := &entity.Run{ID: "a", Translation: entity.Translation{Text: "halo"}}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	// later changes to the caller's value do not leak into storage
	run.Translation.Text = "changed"

	got, err := s.GetRun(ctx, "a")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Translation.Text != "halo" {
		t.Errorf("Translation.Text = %q, want halo", got.Translation.Text)
	}
}

func TestGetRunNotFound(t *testing.T) {
	_, err := New().GetRun(context.Background(), "missing")
	if !errors.Is(err, entity.ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		run := &entity.Run{ID: id, StartedAt: base.Add(time.Duration(2-i) * time.Minute)}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if got := len(ids); got != 3 || ids[0] != "b" || ids[1] != "a" || ids[2] != "c" {
		t.Errorf("ids = %v, want [b a c]", ids)
	}
}

func TestConcurrentSave(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SaveRun(ctx, &entity.Run{ID: string(rune('A' + i))})
		}(i)
	}
	wg.Wait()

	runs, _ := s.ListRuns(ctx)
	if len(runs) != 50 {
		t.Errorf("len(runs) = %d, want 50", len(runs))
	}
}
