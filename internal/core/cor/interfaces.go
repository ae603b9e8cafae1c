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


// Package cor (Chain of Responsibility) provides the building blocks for the
// example preparation workflows. A workflow is a chain of small commands that
// share one Context: each command reads what earlier commands produced, does
// one step of work and writes its result back.
//
// Besides data and errors, every Context owns the random generator of one
// workflow execution. Commands that sample must draw from Context.Rand() and
// nothing else, which keeps concurrent executions independent and makes a
// seeded execution replayable.
package cor

import (
	"context"
	"math/rand/v2"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the default key for the primary input of a command. BaseChain
	// moves the previous command's CtxOut value here before the next command runs.
	CtxIn = "__IN__"
	// CtxOut is the default key a command writes its primary output to.
	CtxOut = "__OUT__"
)

// Context is the shared state of a single workflow execution.
type Context interface {
	// SetContext sets the Go context used for cancellation and trace propagation.
	SetContext(context context.Context)

	// GetContext returns the Go context of the command currently executing.
	GetContext() context.Context

	// SetRand replaces the random generator of this execution.
	SetRand(rng *rand.Rand)

	// Rand returns the random generator of this execution. It is never nil.
	Rand() *rand.Rand

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes key.
	Remove(key string)

	// AddError records the failure of the command named key.
	AddError(key string, err error)

	// GetErrors returns every recorded error keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any command failed.
	HasErrors() bool

	// Err joins the recorded errors in the order they were added, or returns
	// nil when the execution succeeded.
	Err() error
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one named, instrumented step of a workflow.
type Command interface {
	Executable

	// GetName returns the unique name of the command, used for errors and telemetry.
	GetName() string

	// GetInputParam returns the Context key of the command's primary input.
	GetInputParam() string

	// GetOutputParam returns the Context key of the command's primary output.
	GetOutputParam() string

	// IsExecutable reports whether the Context holds what the command needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command made of an ordered list of commands.
type Chain interface {
	Command

	// ContinueOnFailure tells the chain whether to keep going after a command fails.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
