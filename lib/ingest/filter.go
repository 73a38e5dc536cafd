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

	"github.com/chessingest/chess-data-ingestion/lib/chess"
	log "github.com/golang/glog"
	"github.com/google/cel-go/cel"
)

// GameFilter decides whether a generated game is kept.
type GameFilter interface {
	Apply(chess.Game) bool
}

// CELPredicate is a GameFilter backed by a CEL program over the `game` variable.
type CELPredicate struct {
	prg cel.Program
}

// Apply returns true iff the underlying CEL program returns true for the given game.
// A nil predicate matches every game.
func (c *CELPredicate) Apply(g chess.Game) bool {
	if c == nil {
		return true
	}
	fields, err := gameFields(g)
	if err != nil {
		log.Errorf("failed to convert game into CEL input: %v", err)
		return false
	}

	out, _, err := c.prg.Eval(map[string]interface{}{"game": fields})
	if err != nil {
		log.Errorf("failed to evaluate the CEL filter: %v", err)
		return false
	}

	match, ok := out.Value().(bool)
	if !ok {
		log.Errorf("CEL filter returned %T, want bool", out.Value())
		return false
	}
	return match
}

// gameFields exposes a game to CEL under its JSON keys.
func gameFields(g chess.Game) (map[string]interface{}, error) {
	bs, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(bs, &fields); err != nil {
		return nil, err
	}
	for _, k := range []string{"white_elo", "black_elo", "white_rating_diff", "black_rating_diff"} {
		if f, ok := fields[k].(float64); ok {
			fields[k] = int64(f)
		}
	}
	return fields, nil
}

// MakeCELPredicate returns a CELPredicate for the given filter string of CEL
// code, e.g. `game.white_elo > 2000 && game.eco == "B20"`. An empty filter
// yields a nil predicate, which matches everything.
func MakeCELPredicate(filter string) (*CELPredicate, error) {
	if filter == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(cel.Variable("game", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("failed to create a CEL env: %w", err)
	}

	ast, iss := env.Compile(filter)
	if iss != nil && iss.Err() != nil {
		return nil, invalidArgf("failed to compile CEL filter %q: %v", filter, iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &CELPredicate{prg}, nil
}
