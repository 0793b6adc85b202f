package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSupervisorRunsAndDrains(t *testing.T) {
	sup := NewSupervisor()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		sup.Go(context.Background(), "worker", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	sup.Wait()
	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, 0, sup.ActiveCount())
}

func TestSupervisorTracksActiveTasks(t *testing.T) {
	sup := NewSupervisor()
	release := make(chan struct{})
	started := make(chan struct{})

	sup.Go(context.Background(), "blocked", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	<-started
	assert.Equal(t, 1, sup.ActiveCount())

	close(release)
	sup.Wait()
	assert.Equal(t, 0, sup.ActiveCount())
}

func TestSupervisorRecoversPanics(t *testing.T) {
	sup := NewSupervisor()

	sup.Go(context.Background(), "panicky", func(ctx context.Context) error {
		panic("boom")
	})
	sup.Go(context.Background(), "normal", func(ctx context.Context) error {
		return errors.New("expected")
	})

	// Wait returning at all proves the panic was contained.
	sup.Wait()
	assert.Equal(t, 0, sup.ActiveCount())
}

func TestSupervisorShutdownCancelsTasks(t *testing.T) {
	sup := NewSupervisor()

	sup.Go(context.Background(), "sleeper", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute):
			return errors.New("was not cancelled")
		}
	})

	done := make(chan struct{})
	go func() {
		sup.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not cancel the sleeping task")
	}
	assert.Equal(t, 0, sup.ActiveCount())
}
