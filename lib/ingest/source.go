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
	"fmt"

	"github.com/chessingest/chess-data-ingestion/lib/chess"
	log "github.com/golang/glog"
)

// maxFilterAttempts bounds how many consecutive games a filter may reject
// before Load gives up on it.
const maxFilterAttempts = 10000

// Source produces batches of records.
type Source interface {
	Load(count int) (*Batch, error)
}

// MemorySource generates games in memory with a chess.Provider.
type MemorySource struct {
	Provider *chess.Provider
	Kind     Kind
	// Filter, when set, drops generated games it does not match.
	Filter GameFilter
}

// NewMemorySource returns a MemorySource producing records of the given kind.
func NewMemorySource(p *chess.Provider, kind Kind) (*MemorySource, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	return &MemorySource{Provider: p, Kind: kind}, nil
}

// Load returns count freshly generated records, or an empty batch if count <= 0.
func (m *MemorySource) Load(count int) (*Batch, error) {
	if _, err := ParseKind(string(m.Kind)); err != nil {
		return nil, err
	}

	b := &Batch{Kind: m.Kind}
	if count <= 0 {
		return b, nil
	}

	log.V(2).Infof("generating %d %s records", count, m.Kind)
	switch m.Kind {
	case KindGame:
		b.Games = make([]chess.Game, 0, count)
	default:
		b.PGN = make([]string, 0, count)
	}
	for i := 0; i < count; i++ {
		g, err := m.next()
		if err != nil {
			return nil, err
		}
		if m.Kind == KindGame {
			b.Games = append(b.Games, g)
		} else {
			b.PGN = append(b.PGN, chess.FormatPGN(g))
		}
	}
	return b, nil
}

func (m *MemorySource) next() (chess.Game, error) {
	if m.Filter == nil {
		return m.Provider.Game(), nil
	}
	for i := 0; i < maxFilterAttempts; i++ {
		if g := m.Provider.Game(); m.Filter.Apply(g) {
			return g, nil
		}
	}
	return chess.Game{}, fmt.Errorf("%w: filter rejected %d consecutive games", ErrInvalidArgument, maxFilterAttempts)
}
