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
	"os"
	"path/filepath"
	"time"

	log "github.com/golang/glog"
)

// Destination persists one batch per call.
type Destination interface {
	Save(ctx context.Context, b *Batch, format Format, extractedAt time.Time) error
}

// LocalDestination writes batches under RootPath, partitioned by table and extraction date.
type LocalDestination struct {
	RootPath  string
	TableName string
}

// Dir returns the partition directory for a batch extracted at ts.
func (l *LocalDestination) Dir(ts time.Time) string {
	return filepath.Join(l.RootPath, filepath.FromSlash(PartitionPrefix(l.TableName, ts)))
}

// Save writes b to <root>/<table>/extracted_at=<date>/<HHMMSS>.<format>,
// replacing any file of the same name.
func (l *LocalDestination) Save(_ context.Context, b *Batch, format Format, extractedAt time.Time) error {
	body, err := Encode(b, format)
	if err != nil {
		return err
	}

	dir := l.Dir(extractedAt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioErrorf(err, "failed to create partition directory %q", dir)
	}

	name := filepath.Join(dir, FileName(extractedAt, format))
	if err := os.WriteFile(name, body, 0o644); err != nil {
		return ioErrorf(err, "failed to write %q", name)
	}

	log.Infof("wrote %d records (%d bytes) to %q", b.Len(), len(body), name)
	return nil
}
