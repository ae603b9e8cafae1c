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


package workflow

import (
	goctx "context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/cor"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
)

// BatchJob is the input of a BatchWorkflow.
type BatchJob struct {
	Split    string
	Sampling sampling.Config
	Request  *model.BatchRequest
}

// BatchWorkflow prepares the examples of a batch with a pool of workers.
// Item k of a seeded batch draws from stream k of the seed, so its example
// does not depend on which worker picks it up or when. Failed items carry
// their error and do not fail the batch.
type BatchWorkflow struct {
	cor.BaseCommand
	example         *ExamplePreparationWorkflow
	numberOfWorkers int
	itemCounter     metric.Int64Counter
	itemErrCounter  metric.Int64Counter
}

// NewBatchWorkflow creates a batch workflow running numberOfWorkers examples
// at a time.
func NewBatchWorkflow(example *ExamplePreparationWorkflow, numberOfWorkers int) *BatchWorkflow {
	out := &BatchWorkflow{
		BaseCommand:     *cor.NewBaseCommand("batch-workflow"),
		example:         example,
		numberOfWorkers: max(1, numberOfWorkers),
	}
	out.itemCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.item.success", out.GetName()))
	out.itemErrCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.item.error", out.GetName()))
	return out
}

type batchTask struct {
	position int
	request  *model.ExampleRequest
}

// Run prepares every index of job and returns the items in request order.
func (w *BatchWorkflow) Run(ctx goctx.Context, job *BatchJob) *model.BatchResult {
	ctx, span := w.Tracer.Start(ctx, fmt.Sprintf("%s_run", w.GetName()))
	defer span.End()

	result := model.NewBatchResult(job.Split, job.Request)
	span.SetAttributes(attribute.String("batch_id", result.BatchId), attribute.Int("items", len(result.Items)))

	tasks := make(chan batchTask, len(result.Items))
	var wg sync.WaitGroup
	for i := 0; i < min(w.numberOfWorkers, len(result.Items)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				// Each task owns its slot, so workers never write the same item.
				item := &result.Items[task.position]
				if err := ctx.Err(); err != nil {
					item.Error = err.Error()
					continue
				}
				example, err := w.example.Prepare(ctx, task.request)
				if err != nil {
					item.Error = err.Error()
					continue
				}
				item.Example = example
			}
		}()
	}

	for position, index := range job.Request.Indices {
		request := model.NewExampleRequest(job.Split, index, job.Sampling)
		if job.Request.Seed != nil {
			request.WithSeed(*job.Request.Seed, uint64(position))
		}
		tasks <- batchTask{position: position, request: request}
	}
	close(tasks)
	wg.Wait()

	for _, item := range result.Items {
		if item.Error != "" {
			result.Failed++
		}
	}
	if w.itemCounter != nil {
		w.itemCounter.Add(ctx, int64(len(result.Items)-result.Failed))
	}
	if w.itemErrCounter != nil {
		w.itemErrCounter.Add(ctx, int64(result.Failed))
	}
	return result
}

// Execute runs the *BatchJob found under the input key and emits the
// *model.BatchResult.
func (w *BatchWorkflow) Execute(context cor.Context) {
	job, ok := context.Get(w.GetInputParam()).(*BatchJob)
	if !ok || job.Request == nil {
		w.Fail(context, fmt.Errorf("%s expects a *BatchJob input", w.GetName()))
		return
	}
	result := w.Run(context.GetContext(), job)
	w.Succeed(context)
	w.Emit(context, result)
}
