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

import "fmt"

// ConfigError reports an invalid hyper-parameter. Training aborts before any
// work.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid hyper-parameter %s: %s", e.Field, e.Reason)
}

// NumericError reports a singular or ill-conditioned system during a
// half-step solve. Training aborts and no model is produced.
type NumericError struct {
	Kind string // "user" or "item"
	Id   int64
	Err  error
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric failure solving %s %d: %v", e.Kind, e.Id, e.Err)
}

func (e *NumericError) Unwrap() error {
	return e.Err
}
