package leaktest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingTB captures Errorf so a failing check can be asserted on
type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(string, ...any) { r.failed = true }

func TestGoroutineChecker_WaitsForExit(t *testing.T) {
	CheckNoGoroutineLeak(t, func() {
		done := make(chan struct{})
		go func() {
			time.Sleep(30 * time.Millisecond)
			close(done)
		}()
	})
}

func TestGoroutineChecker_ToleratesKnownGoroutines(t *testing.T) {
	checker := NewGoroutineChecker(t)
	release := make(chan struct{})
	defer close(release)
	go func() { <-release }()

	checker.Check(1)
}

func TestGoroutineChecker_ReportsLeak(t *testing.T) {
	rec := &recordingTB{TB: t}
	checker := NewGoroutineChecker(rec)

	release := make(chan struct{})
	defer close(release)
	go func() { <-release }()

	checker.Check(0)
	assert.True(t, rec.failed)
}
