/*
 * Copyright 2026 The Mutacore Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package workerpool

import (
	"sync/atomic"
	"testing"
)

type countingJob struct {
	counter *int64
}

func (j countingJob) Start(_ *Worker) {
	atomic.AddInt64(j.counter, 1)
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := Initialize("test-pool", 3)
	if pool.ActiveWorkers() != 3 {
		t.Fatalf("expected 3 workers, got %d", pool.ActiveWorkers())
	}

	var counter int64
	pool.Start()
	for i := 0; i < 50; i++ {
		pool.AppendJob(countingJob{counter: &counter})
	}
	pool.Stop()

	if got := atomic.LoadInt64(&counter); got != 50 {
		t.Errorf("expected 50 jobs run, got %d", got)
	}
}

func TestInitialize_FallsBackToNumCPU(t *testing.T) {
	pool := Initialize("auto", 0)
	if pool.ActiveWorkers() <= 0 {
		t.Errorf("expected a positive worker count when size<=0")
	}
}
