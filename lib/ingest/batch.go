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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chessingest/chess-data-ingestion/lib/chess"
)

// Batch is the ordered output of one Source.Load call. Only the slice that
// matches Kind is populated.
type Batch struct {
	Kind  Kind
	Games []chess.Game
	PGN   []string
}

// Len returns the number of records in b.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	if b.Kind == KindGame {
		return len(b.Games)
	}
	return len(b.PGN)
}

// Encode serializes b as a single blob. Every Destination writes exactly
// these bytes for a given batch and format.
func Encode(b *Batch, format Format) ([]byte, error) {
	if b == nil {
		b = &Batch{Kind: KindPGN}
	}
	switch format {
	case FormatPGN:
		return []byte(strings.Join(b.pgnTexts(), "\n")), nil
	case FormatJSON:
		var v interface{}
		switch b.Kind {
		case KindGame:
			v = nonNil(b.Games)
		default:
			v = nonNil(b.PGN)
		}
		bs, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal batch to JSON: %w", err)
		}
		return bs, nil
	}
	return nil, invalidArgf("unsupported format %q", format)
}

func (b *Batch) pgnTexts() []string {
	if b.Kind != KindGame {
		return b.PGN
	}
	texts := make([]string, len(b.Games))
	for i, g := range b.Games {
		texts[i] = chess.FormatPGN(g)
	}
	return texts
}

// nonNil keeps empty batches encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
