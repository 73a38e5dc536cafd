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
	"errors"
	"testing"
)

func TestMakeCELPredicate(t *testing.T) {
	for _, tc := range []struct {
		name      string
		filter    string
		wantMatch bool
	}{
		{
			name:      "eco match",
			filter:    `game.eco == "B20"`,
			wantMatch: true,
		}, {
			name:      "eco mismatch",
			filter:    `game.eco == "C50"`,
			wantMatch: false,
		}, {
			name:      "elo comparison",
			filter:    `game.white_elo > 1400 && game.black_elo < 2000`,
			wantMatch: true,
		}, {
			name:      "negative rating diff",
			filter:    `game.black_rating_diff < 0`,
			wantMatch: true,
		}, {
			name:      "time control set",
			filter:    `game.time_control in ["60+0", "120+1"]`,
			wantMatch: true,
		}, {
			name:      "non-bool result",
			filter:    `game.eco`,
			wantMatch: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := MakeCELPredicate(tc.filter)
			if err != nil {
				t.Fatalf("MakeCELPredicate(%q): %v", tc.filter, err)
			}
			if pred.Apply(testGame) != tc.wantMatch {
				t.Errorf("CELPredicate(%q).Apply(%+v) != %v", tc.filter, testGame, tc.wantMatch)
			}
		})
	}
}

func TestMakeCELPredicateEmpty(t *testing.T) {
	pred, err := MakeCELPredicate("")
	if err != nil {
		t.Fatalf("MakeCELPredicate(\"\"): %v", err)
	}
	if !pred.Apply(testGame) {
		t.Error("empty predicate rejected a game")
	}
}

func TestMakeCELPredicateErrors(t *testing.T) {
	for _, filter := range []string{"uh oh", `game.eco ==`, `other.eco == "B20"`} {
		if _, err := MakeCELPredicate(filter); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("MakeCELPredicate(%q) error = %v, want ErrInvalidArgument", filter, err)
		}
	}
}
