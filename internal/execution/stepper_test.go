// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAsync(s *Stepper) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	return done
}

func TestStepper_WaitBlocksUntilWake(t *testing.T) {
	s := NewStepper()
	done := waitAsync(s)

	require.Eventually(t, s.IsWaiting, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("wait returned before wake")
	case <-time.After(20 * time.Millisecond):
	}

	s.Wake()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after wake")
	}
	assert.False(t, s.IsWaiting())
}

func TestStepper_SkipBypassesExactlyOneWait(t *testing.T) {
	s := NewStepper()
	s.Skip()

	select {
	case <-waitAsync(s):
	case <-time.After(time.Second):
		t.Fatal("skipped wait parked")
	}
	assert.False(t, s.IsWaiting())

	done := waitAsync(s)
	require.Eventually(t, s.IsWaiting, time.Second, time.Millisecond)
	s.Wake()
	<-done
}

func TestStepper_SkipDoesNotReleaseParkedWait(t *testing.T) {
	s := NewStepper()
	done := waitAsync(s)
	require.Eventually(t, s.IsWaiting, time.Second, time.Millisecond)

	s.Skip()
	select {
	case <-done:
		t.Fatal("skip released a parked wait")
	case <-time.After(20 * time.Millisecond):
	}

	s.Wake()
	<-done

	// the skip is still armed for the next wait
	select {
	case <-waitAsync(s):
	case <-time.After(time.Second):
		t.Fatal("pending skip was lost")
	}
}

func TestStepper_WakeWithoutWaiterIsHarmless(t *testing.T) {
	s := NewStepper()
	s.Wake()
	s.Wake()
	assert.False(t, s.IsWaiting())

	done := waitAsync(s)
	require.Eventually(t, s.IsWaiting, time.Second, time.Millisecond)
	s.Wake()
	<-done
}
