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

// Package cf implements collaborative filtering over explicit feedback:
// alternating least squares factorization of the sparse rating matrix into
// dense user and item embeddings.
package cf

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/chewxy/math32"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/latent-io/latent/base"
	"github.com/latent-io/latent/base/floats"
	"github.com/latent-io/latent/base/log"
	"github.com/latent-io/latent/base/parallel"
	"github.com/latent-io/latent/dataset"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// FitConfig holds the runtime parameters of one training run.
type FitConfig struct {
	Jobs    int
	Verbose int
}

// NewFitConfig creates a fit config.
func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
	}
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

// LoadDefaultIfNil returns defaults for a nil config and clamps Jobs and
// Verbose to at least 1, so a zero value never skips training rows.
func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	if config.Jobs < 1 {
		config.Jobs = 1
	}
	if config.Verbose < 1 {
		config.Verbose = 1
	}
	return config
}

// ALS factorizes the rating matrix by alternating regularized least squares.
// Each iteration performs two strictly ordered half-steps: all user rows are
// recomputed against the fixed item factors, then all item rows against the
// just-updated user factors. Every row solve is an independent k×k normal
// equation
//
//	U_u = (V_uᵀ V_u + λI)⁻¹ V_uᵀ r_u
//
// restricted to the items the user rated, solved by an explicit Cholesky
// factorization.
type ALS struct {
	config Config
}

// NewALS creates an ALS solver. It fails with *ConfigError on invalid
// hyper-parameters.
func NewALS(config Config) (*ALS, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ALS{config: config}, nil
}

// Fit trains a model. Half-steps write into fresh buffers that are swapped in
// only after every row of the half-step completes, so no solve ever observes
// a partially updated matrix. Cancellation is checked between iterations and
// aborts without producing a model. Training stops after NEpochs iterations,
// or earlier when the RMSE change between consecutive iterations drops below
// Tol.
func (als *ALS) Fit(ctx context.Context, trainSet *dataset.Dataset, config *FitConfig) (*Model, error) {
	config = config.LoadDefaultIfNil()
	k := als.config.NFactors
	numUsers, numItems := trainSet.CountUsers(), trainSet.CountItems()
	log.Logger().Info("fit als",
		zap.Int("users", numUsers),
		zap.Int("items", numItems),
		zap.Int("feedback", trainSet.CountFeedback()),
		zap.Any("params", als.config),
		zap.Any("config", config))
	// deterministic initialization
	rng := base.NewRandomGenerator(als.config.Seed)
	userFactor := rng.NormalMatrix(numUsers, k, 0, als.config.InitStdDev)
	itemFactor := rng.NormalMatrix(numItems, k, 0, als.config.InitStdDev)
	// per-worker solve buffers
	a := make([][][]float32, config.Jobs)
	b := base.NewMatrix32(config.Jobs, k)
	for i := 0; i < config.Jobs; i++ {
		a[i] = base.NewMatrix32(k, k)
	}
	residuals := make([]float64, numUsers)
	rmse := als.rmse(trainSet, userFactor, itemFactor, config.Jobs, residuals)
	log.Logger().Debug(fmt.Sprintf("fit als %v/%v", 0, als.config.NEpochs),
		zap.Float32("rmse", rmse))
	epochs := 0
	for ep := 1; ep <= als.config.NEpochs; ep++ {
		select {
		case <-ctx.Done():
			return nil, errors.Trace(ctx.Err())
		default:
		}
		fitStart := time.Now()
		// user half-step
		nextUserFactor := base.NewMatrix32(numUsers, k)
		err := parallel.Parallel(numUsers, config.Jobs, func(workerId, userIndex int) error {
			feedback := trainSet.GetUserFeedback()[userIndex]
			if len(feedback) == 0 {
				// cold row, stays zero
				return nil
			}
			if err := solveRow(feedback, itemFactor, als.config.Reg, a[workerId], b[workerId], nextUserFactor[userIndex]); err != nil {
				return &NumericError{Kind: "user", Id: trainSet.UserIndex.ToId(int32(userIndex)), Err: err}
			}
			return nil
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		userFactor = nextUserFactor
		// item half-step, observes the fully updated user factors
		nextItemFactor := base.NewMatrix32(numItems, k)
		err = parallel.Parallel(numItems, config.Jobs, func(workerId, itemIndex int) error {
			feedback := trainSet.GetItemFeedback()[itemIndex]
			if len(feedback) == 0 {
				return nil
			}
			if err := solveRow(feedback, userFactor, als.config.Reg, a[workerId], b[workerId], nextItemFactor[itemIndex]); err != nil {
				return &NumericError{Kind: "item", Id: trainSet.ItemIndex.ToId(int32(itemIndex)), Err: err}
			}
			return nil
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		itemFactor = nextItemFactor
		prevRMSE := rmse
		rmse = als.rmse(trainSet, userFactor, itemFactor, config.Jobs, residuals)
		epochs = ep
		if ep%config.Verbose == 0 || ep == als.config.NEpochs {
			log.Logger().Debug(fmt.Sprintf("fit als %v/%v", ep, als.config.NEpochs),
				zap.String("fit_time", time.Since(fitStart).String()),
				zap.Float32("rmse", rmse))
		}
		if als.config.Tol > 0 && math32.Abs(prevRMSE-rmse) < als.config.Tol {
			log.Logger().Debug("early stop",
				zap.Int("epoch", ep),
				zap.Float32("rmse", rmse),
				zap.Float32("delta", math32.Abs(prevRMSE-rmse)))
			break
		}
	}
	model := als.buildModel(trainSet, userFactor, itemFactor, rmse, epochs)
	log.Logger().Info("fit als complete",
		zap.String("version", model.Version),
		zap.Int("epochs", model.Epochs),
		zap.Float32("rmse", model.RMSE))
	return model, nil
}

// solveRow accumulates the normal equations of one row over its observed
// ratings and solves them. Only the lower triangle of a is filled since the
// Cholesky routine reads nothing else.
func solveRow(feedback []dataset.Feedback, other [][]float32, reg float32, a [][]float32, b, x []float32) error {
	k := len(b)
	floats.MatZero(a)
	floats.Zero(b)
	for _, f := range feedback {
		v := other[f.Index]
		for i := 0; i < k; i++ {
			for j := 0; j <= i; j++ {
				a[i][j] += v[i] * v[j]
			}
		}
		floats.MulConstAddTo(v, f.Rating, b)
	}
	for i := 0; i < k; i++ {
		a[i][i] += reg
	}
	return choleskySolve(a, b, x)
}

// rmse computes the root-mean-squared error over observed entries. Per-user
// sums land in disjoint slots of residuals and are reduced sequentially, so
// the result does not depend on goroutine scheduling.
func (als *ALS) rmse(trainSet *dataset.Dataset, userFactor, itemFactor [][]float32, jobs int, residuals []float64) float32 {
	_ = parallel.BatchParallel(trainSet.CountUsers(), jobs, 128, func(_, beginUserIndex, endUserIndex int) error {
		for userIndex := beginUserIndex; userIndex < endUserIndex; userIndex++ {
			var sum float64
			for _, f := range trainSet.GetUserFeedback()[userIndex] {
				diff := float64(floats.Dot(userFactor[userIndex], itemFactor[f.Index]) - f.Rating)
				sum += diff * diff
			}
			residuals[userIndex] = sum
		}
		return nil
	})
	var total float64
	for _, r := range residuals {
		total += r
	}
	return float32(math.Sqrt(total / float64(trainSet.CountFeedback())))
}

func (als *ALS) buildModel(trainSet *dataset.Dataset, userFactor, itemFactor [][]float32, rmse float32, epochs int) *Model {
	userTable, userTrained := als.buildTable(trainSet.UserIndex, trainSet.GetUserFeedback(), userFactor)
	itemTable, itemTrained := als.buildTable(trainSet.ItemIndex, trainSet.GetItemFeedback(), itemFactor)
	userRated := make(map[int64][]int64, trainSet.CountUsers())
	for userIndex, userId := range trainSet.UserIds() {
		userRated[userId] = lo.Map(trainSet.GetUserFeedback()[userIndex],
			func(f dataset.Feedback, _ int) int64 {
				return trainSet.ItemIndex.ToId(f.Index)
			})
	}
	return &Model{
		Version:     uuid.NewString(),
		NFactors:    als.config.NFactors,
		Epochs:      epochs,
		RMSE:        rmse,
		TrainedAt:   time.Now(),
		UserFactors: userTable,
		ItemFactors: itemTable,
		userRated:   userRated,
		userTrained: userTrained,
		itemTrained: itemTrained,
	}
}

// buildTable publishes factor rows under the cold-start policy: drop omits
// rows without observed ratings, zero-vector keeps their zero embedding.
func (als *ALS) buildTable(index *base.Index, feedback [][]dataset.Feedback, factors [][]float32) (*Table, *bitset.BitSet) {
	table := &Table{
		Index:     base.NewIndex(),
		Dimension: als.config.NFactors,
	}
	trained := bitset.New(uint(index.Len()))
	for number, id := range index.GetIds() {
		cold := len(feedback[number]) == 0
		if cold && als.config.ColdStart == ColdStartDrop {
			continue
		}
		table.Index.Add(id)
		table.Factors = append(table.Factors, factors[number])
		if !cold {
			trained.Set(uint(table.Index.Len() - 1))
		}
	}
	return table, trained
}
