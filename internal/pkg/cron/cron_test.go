package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunRecordsStatus(t *testing.T) {
	var results []string
	s := New(nil, func(name string, err error) {
		if err != nil {
			results = append(results, name+":err")
			return
		}
		results = append(results, name+":ok")
	})
	s.Register(Job{Name: "ok", Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "bad", Fn: func(context.Context) error { return errors.New("boom") }})

	if err := s.Run(context.Background(), "ok"); err != nil {
		t.Fatalf("Run(ok) = %v", err)
	}
	if err := s.Run(context.Background(), "bad"); err == nil || err.Error() != "boom" {
		t.Fatalf("Run(bad) = %v, want boom", err)
	}
	if err := s.Run(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Run(missing) = %v, want ErrJobNotFound", err)
	}

	items := s.List()
	if len(items) != 2 || items[0].Name != "bad" || items[1].Name != "ok" {
		t.Fatalf("List = %+v", items)
	}
	if items[0].Status != StatusReject || items[0].Message != "boom" {
		t.Fatalf("bad job state = %+v", items[0])
	}
	if items[1].Status != StatusFulfill || items[1].LastRunAt == nil {
		t.Fatalf("ok job state = %+v", items[1])
	}
	if len(results) != 2 || results[0] != "ok:ok" || results[1] != "bad:err" {
		t.Fatalf("onResult calls = %v", results)
	}
}

func TestStartRunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := New(nil, nil)
	s.Register(Job{Name: "tick", Interval: 5 * time.Millisecond, Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})
	s.Register(Job{Name: "manual", Fn: func(context.Context) error {
		t.Error("manual job must not be scheduled")
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	s.Wait()

	if runs.Load() < 2 {
		t.Fatalf("runs = %d, want at least 2", runs.Load())
	}
}
