// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"math/rand"
	"time"

	log "github.com/golang/glog"
)

const (
	minRandomRecords = 100
	maxRandomRecords = 1000
)

// Ingestor runs one Source -> Destination pass per Run call.
type Ingestor struct {
	Source      Source
	Destination Destination
	Format      Format

	// NumRecords fixes the batch size; if <= 0 each run draws one in [100, 1000].
	NumRecords int

	// Clock and Rand default to time.Now and the global math/rand source.
	Clock func() time.Time
	Rand  *rand.Rand

	// Metrics is optional.
	Metrics *Metrics
}

// Run loads one batch and saves it, stamped with the time the run started.
// Errors from the source or destination are returned unchanged.
func (in *Ingestor) Run(ctx context.Context) error {
	extractedAt := in.now()
	count := in.recordCount()
	log.V(1).Infof("starting run at %v: %d records to %T", extractedAt, count, in.Destination)

	b, err := in.Source.Load(count)
	if err != nil {
		in.Metrics.observeRun(runFailedLoad, 0, 0, extractedAt)
		return err
	}

	start := time.Now()
	err = in.Destination.Save(ctx, b, in.Format, extractedAt)
	if err != nil {
		in.Metrics.observeRun(runFailedSave, b.Len(), time.Since(start), extractedAt)
		return err
	}

	in.Metrics.observeRun(runSucceeded, b.Len(), time.Since(start), extractedAt)
	log.V(1).Infof("run finished: %d records saved", b.Len())
	return nil
}

func (in *Ingestor) now() time.Time {
	if in.Clock != nil {
		return in.Clock().UTC()
	}
	return time.Now().UTC()
}

func (in *Ingestor) recordCount() int {
	if in.NumRecords > 0 {
		return in.NumRecords
	}
	n := maxRandomRecords - minRandomRecords + 1
	if in.Rand != nil {
		return minRandomRecords + in.Rand.Intn(n)
	}
	return minRandomRecords + rand.Intn(n)
}
