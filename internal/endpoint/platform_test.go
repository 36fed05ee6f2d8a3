package endpoint

import (
	"errors"
	"sync"
	"testing"
)

func TestOnceRunsUntilFirstSuccess(t *testing.T) {
	var o Once
	calls := 0
	fail := errors.New("boom")

	err := o.Do(func() error { calls++; return fail })
	if !errors.Is(err, fail) {
		t.Fatalf("expected first failure, got %v", err)
	}
	if o.Done() {
		t.Error("a failed initializer must not mark the guard done")
	}

	if err := o.Do(func() error { calls++; return nil }); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := o.Do(func() error { calls++; return nil }); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	if calls != 2 {
		t.Errorf("expected initializer to run 2 times, ran %d", calls)
	}
	if !o.Done() {
		t.Error("expected guard to be done")
	}
}

func TestOnceConcurrentCallers(t *testing.T) {
	var o Once
	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = o.Do(func() error {
				mu.Lock()
				calls++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected exactly one initialization, got %d", calls)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"in", Capture, false},
		{"IN", Capture, false},
		{"mic", Capture, false},
		{"out", Render, false},
		{"Render", Render, false},
		{"speaker", Render, false},
		{"sideways", Capture, true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, err := ParseRole(role.String())
		if err != nil || got != role {
			t.Errorf("ParseRole(%q) = %v, %v", role.String(), got, err)
		}
	}
	if _, err := ParseRole("karaoke"); err == nil {
		t.Error("expected error for unknown role")
	}
}
