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


package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
)

type splitData struct {
	records  []*model.DatasetRecord
	rejected []model.Rejection
	stats    *model.DatasetStats
}

// Catalog caches the curated records of each split. Splits load lazily on
// first use and stay cached until Refresh or Invalidate. A Catalog is safe
// for concurrent use; records it returns must not be modified.
type Catalog struct {
	source  Source
	splits  []string
	curator *Curator

	mu     sync.RWMutex
	loaded map[string]*splitData
	group  singleflight.Group // one cold load per split
}

// NewCatalog creates a catalog over source restricted to splits. A nil
// curator keeps every record that decodes.
func NewCatalog(source Source, splits []string, curator *Curator) *Catalog {
	return &Catalog{
		source:  source,
		splits:  slices.Clone(splits),
		curator: curator,
		loaded:  make(map[string]*splitData),
	}
}

// Splits returns the configured split names.
func (c *Catalog) Splits() []string {
	return slices.Clone(c.splits)
}

// CheckSplit returns ErrUnknownSplit for names outside the configured set.
func (c *Catalog) CheckSplit(split string) error {
	if !slices.Contains(c.splits, split) {
		return fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownSplit, split, c.splits)
	}
	return nil
}

// Records returns the curated records of split.
func (c *Catalog) Records(ctx context.Context, split string) ([]*model.DatasetRecord, error) {
	data, err := c.get(ctx, split)
	if err != nil {
		return nil, err
	}
	return data.records, nil
}

// Record returns the record at index of split.
func (c *Catalog) Record(ctx context.Context, split string, index int) (*model.DatasetRecord, error) {
	data, err := c.get(ctx, split)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(data.records) {
		return nil, fmt.Errorf("%w: index %d of split %s with %d records", ErrRecordNotFound, index, split, len(data.records))
	}
	return data.records[index], nil
}

// Stats returns the sequence-length statistics of split.
func (c *Catalog) Stats(ctx context.Context, split string) (*model.DatasetStats, error) {
	data, err := c.get(ctx, split)
	if err != nil {
		return nil, err
	}
	return data.stats, nil
}

// Rejections returns the records curation dropped from split.
func (c *Catalog) Rejections(ctx context.Context, split string) ([]model.Rejection, error) {
	data, err := c.get(ctx, split)
	if err != nil {
		return nil, err
	}
	return data.rejected, nil
}

// Refresh reloads split from the source. The cached copy keeps serving
// until the new one is ready and is kept if the reload fails.
func (c *Catalog) Refresh(ctx context.Context, split string) error {
	if err := c.CheckSplit(split); err != nil {
		return err
	}
	data, err := c.load(ctx, split)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.loaded[split] = data
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached copy of split; the next use reloads it.
func (c *Catalog) Invalidate(split string) {
	c.mu.Lock()
	delete(c.loaded, split)
	c.mu.Unlock()
}

func (c *Catalog) get(ctx context.Context, split string) (*splitData, error) {
	if err := c.CheckSplit(split); err != nil {
		return nil, err
	}

	c.mu.RLock()
	data, ok := c.loaded[split]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	v, err, _ := c.group.Do(split, func() (any, error) {
		c.mu.RLock()
		data, ok := c.loaded[split]
		c.mu.RUnlock()
		if ok {
			return data, nil
		}
		data, err := c.load(ctx, split)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.loaded[split] = data
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*splitData), nil
}

func (c *Catalog) load(ctx context.Context, split string) (*splitData, error) {
	records, err := c.source.Load(ctx, split)
	if err != nil {
		return nil, fmt.Errorf("load split %s from %s: %w", split, c.source.Name(), err)
	}

	data := &splitData{records: records}
	if c.curator != nil {
		data.records, data.rejected = c.curator.Curate(records)
	}
	data.stats = Summarize(split, data.records)

	slog.InfoContext(ctx, "loaded split",
		"split", split,
		"source", c.source.Name(),
		"records", len(data.records),
		"rejected", len(data.rejected),
		"min_seq_len", data.stats.MinSeqLen,
		"max_seq_len", data.stats.MaxSeqLen,
		"histogram", data.stats.Histogram)
	return data, nil
}
