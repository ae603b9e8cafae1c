// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cor

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// BaseContext is the default Context implementation.
type BaseContext struct {
	data    map[string]interface{}
	errors  map[string]error
	order   []string // command names in the order their errors were recorded
	rng     *rand.Rand
	context context.Context
}

// NewBaseContext returns an empty Context with a freshly seeded generator.
// Use SetRand to replay a seeded execution.
func NewBaseContext() Context {
	return &BaseContext{
		data:   make(map[string]interface{}),
		errors: make(map[string]error),
		rng:    sampling.FreshRand(),
	}
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

func (c *BaseContext) SetRand(rng *rand.Rand) {
	if rng != nil {
		c.rng = rng
	}
}

func (c *BaseContext) Rand() *rand.Rand {
	return c.rng
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// AddError records err for the command named key. A second error from the
// same command replaces the first but keeps its position.
func (c *BaseContext) AddError(key string, err error) {
	if _, ok := c.errors[key]; !ok {
		c.order = append(c.order, key)
	}
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

func (c *BaseContext) Err() error {
	if len(c.order) == 0 {
		return nil
	}
	errs := make([]error, 0, len(c.order))
	for _, key := range c.order {
		errs = append(errs, fmt.Errorf("%s: %w", key, c.errors[key]))
	}
	return errors.Join(errs...)
}
