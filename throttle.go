// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"sync"
	"sync/atomic"
)

// throttle runs functions in goroutines, at most Max at a time, and
// remembers the first error any of them returns.
type throttle struct {
	Max       int
	wg        sync.WaitGroup
	ch        chan bool
	err       atomic.Value
	setupOnce sync.Once
	errorOnce sync.Once
}

// Go waits for a free slot, then calls fn in a new goroutine.
func (t *throttle) Go(fn func() error) {
	t.setupOnce.Do(func() {
		if t.Max < 1 {
			t.Max = 1
		}
		t.ch = make(chan bool, t.Max)
	})
	t.wg.Add(1)
	t.ch <- true
	go func() {
		defer func() {
			<-t.ch
			t.wg.Done()
		}()
		t.report(fn())
	}()
}

func (t *throttle) report(err error) {
	if err != nil {
		t.errorOnce.Do(func() { t.err.Store(err) })
	}
}

func (t *throttle) Err() error {
	err, _ := t.err.Load().(error)
	return err
}

// Wait waits for all functions passed to Go to return, and returns
// the first error.
func (t *throttle) Wait() error {
	t.wg.Wait()
	return t.Err()
}
