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

// Package workerpool is the bounded-concurrency job queue the analysis
// orchestrator schedules mutants onto.
package workerpool

import (
	"runtime"
	"sync"
)

// Job is a unit of work a Worker executes.
type Job interface {
	Start(worker *Worker)
}

// Worker pulls Jobs off a shared queue until it is closed.
type Worker struct {
	Name   string
	ID     int
	stopCh chan struct{}
}

// NewWorker returns a Worker identified by id within pool name.
func NewWorker(id int, name string) *Worker {
	return &Worker{Name: name, ID: id}
}

// Start begins draining jobQueue in its own goroutine until the queue is
// closed.
func (w *Worker) Start(jobQueue <-chan Job) {
	w.stopCh = make(chan struct{})
	go func() {
		for {
			job, ok := <-jobQueue
			if !ok {
				w.stopCh <- struct{}{}

				return
			}
			job.Start(w)
		}
	}()
}

func (w *Worker) stop() {
	<-w.stopCh
}

// Pool is a fixed-size set of Workers draining a shared job queue.
type Pool struct {
	queue   chan Job
	name    string
	workers []*Worker
	size    int
}

// Initialize builds a Pool of size workers. size <= 0 falls back to
// runtime.NumCPU().
func Initialize(name string, size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	p := &Pool{size: size, name: name}
	for i := 0; i < size; i++ {
		p.workers = append(p.workers, NewWorker(i, name))
	}
	p.queue = make(chan Job, size)

	return p
}

// AppendJob enqueues job, blocking if the queue is full.
func (p *Pool) AppendJob(job Job) {
	p.queue <- job
}

// Start launches every worker.
func (p *Pool) Start() {
	for _, w := range p.workers {
		w.Start(p.queue)
	}
}

// Stop closes the queue and waits for every worker to drain and exit.
func (p *Pool) Stop() {
	close(p.queue)

	var wg sync.WaitGroup
	for _, worker := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.stop()
		}(worker)
	}
	wg.Wait()
}

// ActiveWorkers returns the number of workers in the pool.
func (p *Pool) ActiveWorkers() int {
	return len(p.workers)
}
