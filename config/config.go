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

// Package config loads and validates the configuration supplied by the
// orchestration layer: data validation policy, solver hyper-parameters and
// fit parallelism.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/latent-io/latent/dataset"
	"github.com/latent-io/latent/model/cf"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Data  DataConfig `mapstructure:"data"`
	Train cf.Config  `mapstructure:"train"`
	Fit   FitConfig  `mapstructure:"fit"`
}

// DataConfig controls interaction validation.
type DataConfig struct {
	MinRating  float32 `mapstructure:"min_rating"`
	MaxRating  float32 `mapstructure:"max_rating" validate:"gtfield=MinRating"`
	Duplicates string  `mapstructure:"duplicates" validate:"oneof=last_write_wins reject"`
}

// FitConfig controls training parallelism and verbosity.
type FitConfig struct {
	Jobs    int `mapstructure:"jobs" validate:"gte=1"`
	Verbose int `mapstructure:"verbose" validate:"gte=1"`
}

func setDefault() {
	defaultOptions := dataset.DefaultOptions()
	viper.SetDefault("data.min_rating", defaultOptions.MinRating)
	viper.SetDefault("data.max_rating", defaultOptions.MaxRating)
	viper.SetDefault("data.duplicates", string(defaultOptions.Duplicates))
	defaultTrain := cf.NewConfig()
	viper.SetDefault("train.n_factors", defaultTrain.NFactors)
	viper.SetDefault("train.n_epochs", defaultTrain.NEpochs)
	viper.SetDefault("train.reg", defaultTrain.Reg)
	viper.SetDefault("train.seed", defaultTrain.Seed)
	viper.SetDefault("train.tol", defaultTrain.Tol)
	viper.SetDefault("train.init_std_dev", defaultTrain.InitStdDev)
	viper.SetDefault("train.cold_start", string(defaultTrain.ColdStart))
	viper.SetDefault("fit.jobs", 1)
	viper.SetDefault("fit.verbose", 10)
}

// LoadConfig loads the configuration from a file. Values are overridable by
// LATENT_* environment variables. Solver hyper-parameters are validated by
// the solver itself and fail with *cf.ConfigError.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("latent")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	conf := new(Config)
	if err := viper.Unmarshal(conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).StructExcept(conf, "Train"); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Train.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// DatasetOptions converts the data section into dataset build options.
func (config *Config) DatasetOptions() dataset.Options {
	return dataset.Options{
		MinRating:  config.Data.MinRating,
		MaxRating:  config.Data.MaxRating,
		Duplicates: dataset.DuplicatePolicy(config.Data.Duplicates),
	}
}

// FitConfig converts the fit section into solver runtime parameters.
func (config *Config) FitConfig() *cf.FitConfig {
	return cf.NewFitConfig().SetJobs(config.Fit.Jobs).SetVerbose(config.Fit.Verbose)
}
