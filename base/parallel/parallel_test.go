// Copyright 2026 latent Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	var sum int64
	err := Parallel(1000, 4, func(workerId, jobId int) error {
		atomic.AddInt64(&sum, int64(jobId))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(999*1000/2), sum)
}

func TestParallel_Sequential(t *testing.T) {
	order := make([]int, 0, 10)
	err := Parallel(10, 1, func(workerId, jobId int) error {
		assert.Zero(t, workerId)
		order = append(order, jobId)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestParallel_Error(t *testing.T) {
	expected := errors.New("boom")
	err := Parallel(100, 4, func(workerId, jobId int) error {
		if jobId == 42 {
			return expected
		}
		return nil
	})
	assert.ErrorIs(t, err, expected)
}

func TestParallel_ErrorWithPendingJobs(t *testing.T) {
	// every worker aborts while most jobs are still unsent, so the producer
	// must not stay blocked on the job channel
	before := runtime.NumGoroutine()
	expected := errors.New("boom")
	for i := 0; i < 10; i++ {
		err := Parallel(chanSize*4, 2, func(workerId, jobId int) error {
			return expected
		})
		assert.ErrorIs(t, err, expected)
	}
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+1
	}, time.Second, 10*time.Millisecond)
}

func TestBatchParallel(t *testing.T) {
	var sum int64
	err := BatchParallel(1000, 4, 32, func(workerId, beginJobId, endJobId int) error {
		for jobId := beginJobId; jobId < endJobId; jobId++ {
			atomic.AddInt64(&sum, int64(jobId))
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(999*1000/2), sum)
}

func TestSplit(t *testing.T) {
	chunks := Split([]int{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}}, chunks)
	chunks = Split([]int{1, 2}, 3)
	assert.Equal(t, [][]int{{1}, {2}}, chunks)
}
