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
	"path"
	"time"
)

const (
	partitionDateLayout = "2006-01-02"
	fileTimeLayout      = "150405"
)

// PartitionPrefix returns `<table>/extracted_at=<YYYY-MM-DD>` for ts.
func PartitionPrefix(table string, ts time.Time) string {
	return path.Join(table, "extracted_at="+ts.Format(partitionDateLayout))
}

// FileName returns `<HHMMSS>.<format>` for ts.
func FileName(ts time.Time, format Format) string {
	return ts.Format(fileTimeLayout) + "." + string(format)
}

// ObjectKey returns the object-storage key a batch extracted at ts is written to.
func ObjectKey(table string, ts time.Time, format Format) string {
	return path.Join(PartitionPrefix(table, ts), FileName(ts, format))
}
