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

package cf

import (
	"github.com/go-playground/validator/v10"
)

// ColdStartPolicy decides what happens to users and items registered without
// any observed rating.
type ColdStartPolicy string

const (
	// ColdStartDrop omits cold entities from the published factor tables, so
	// serving reports them as cold starts.
	ColdStartDrop ColdStartPolicy = "drop"
	// ColdStartZeroVector publishes a zero embedding for cold entities. Their
	// cosine similarity to anything is 0 and they rank last.
	ColdStartZeroVector ColdStartPolicy = "zero_vector"
)

// Config holds the hyper-parameters of the ALS solver.
type Config struct {
	// NFactors is the latent factor dimension k.
	NFactors int `mapstructure:"n_factors" validate:"gt=0"`
	// NEpochs is the maximum number of iterations T. Each iteration performs
	// one user half-step followed by one item half-step.
	NEpochs int `mapstructure:"n_epochs" validate:"gt=0"`
	// Reg is the regularization strength λ added to the diagonal of every
	// per-row system.
	Reg float32 `mapstructure:"reg" validate:"gte=0"`
	// Seed drives the initialization of the factor matrices. Identical seed,
	// data and configuration produce identical output.
	Seed int64 `mapstructure:"seed"`
	// Tol stops training early when the change of RMSE between consecutive
	// iterations drops below it. Zero disables early stopping.
	Tol float32 `mapstructure:"tol" validate:"gte=0"`
	// InitStdDev is the standard deviation of the initial latent factors.
	InitStdDev float32 `mapstructure:"init_std_dev" validate:"gt=0"`
	// ColdStart selects the fallback for entities without ratings.
	ColdStart ColdStartPolicy `mapstructure:"cold_start" validate:"oneof=drop zero_vector"`
}

// NewConfig creates a config with default hyper-parameters.
func NewConfig() Config {
	return Config{
		NFactors:   16,
		NEpochs:    50,
		Reg:        0.06,
		Seed:       0,
		Tol:        0,
		InitStdDev: 0.1,
		ColdStart:  ColdStartDrop,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate returns *ConfigError on the first invalid hyper-parameter.
func (config Config) Validate() error {
	if err := validate.Struct(config); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
			return &ConfigError{
				Field:  fieldErrors[0].Field(),
				Reason: "must satisfy " + fieldErrors[0].Tag() + "=" + fieldErrors[0].Param(),
			}
		}
		return err
	}
	return nil
}
