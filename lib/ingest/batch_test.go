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
	"errors"
	"strings"
	"testing"

	"github.com/chessingest/chess-data-ingestion/lib/chess"
	"github.com/google/go-cmp/cmp"
)

var testGame = chess.Game{
	Event:           "Rated Bullet game",
	Site:            "https://lichess.org",
	White:           "John",
	Black:           "Doe",
	Result:          "1-0",
	UTCDate:         "2021.01.01",
	UTCTime:         "12:00:00",
	WhiteElo:        1500,
	BlackElo:        1600,
	WhiteRatingDiff: 10,
	BlackRatingDiff: -5,
	ECO:             "B20",
	Opening:         "Sicilian Defense",
	TimeControl:     "120+1",
	Termination:     "Normal",
	Moves:           "1. e4 c5",
}

func TestEncode(t *testing.T) {
	pgn := chess.FormatPGN(testGame)
	for _, tc := range []struct {
		name   string
		batch  *Batch
		format Format
		want   string
	}{{
		name:   "empty pgn batch",
		batch:  &Batch{Kind: KindPGN},
		format: FormatPGN,
		want:   "",
	}, {
		name:   "empty json batch",
		batch:  &Batch{Kind: KindGame},
		format: FormatJSON,
		want:   "[]",
	}, {
		name:   "nil batch",
		format: FormatJSON,
		want:   "[]",
	}, {
		name:   "pgn texts are separated by a blank line",
		batch:  &Batch{Kind: KindPGN, PGN: []string{pgn, pgn}},
		format: FormatPGN,
		want:   pgn + "\n" + pgn,
	}, {
		name:   "games rendered as pgn",
		batch:  &Batch{Kind: KindGame, Games: []chess.Game{testGame}},
		format: FormatPGN,
		want:   pgn,
	}, {
		name:   "pgn texts as json strings",
		batch:  &Batch{Kind: KindPGN, PGN: []string{"a", "b"}},
		format: FormatJSON,
		want:   `["a","b"]`,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.batch, tc.format)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, string(got)); diff != "" {
				t.Errorf("Encode produced unexpected body (want- got+)\n%s", diff)
			}
		})
	}
}

func TestEncodeJSONKeyOrder(t *testing.T) {
	got, err := Encode(&Batch{Kind: KindGame, Games: []chess.Game{testGame}}, FormatJSON)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	keys := []string{
		"event", "site", "white", "black", "result", "utc_date", "utc_time",
		"white_elo", "black_elo", "white_rating_diff", "black_rating_diff",
		"eco", "opening", "time_control", "termination", "moves",
	}
	last := -1
	for _, k := range keys {
		i := strings.Index(string(got), `"`+k+`":`)
		if i <= last {
			t.Fatalf("key %q out of order in %s", k, got)
		}
		last = i
	}

	var decoded []chess.Game
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if diff := cmp.Diff([]chess.Game{testGame}, decoded); diff != "" {
		t.Errorf("decoded games differ (want- got+)\n%s", diff)
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	_, err := Encode(&Batch{Kind: KindPGN}, Format("csv"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Encode(csv) error = %v, want ErrInvalidArgument", err)
	}
}

func TestParseKindAndFormat(t *testing.T) {
	if _, err := ParseKind("pgn"); err != nil {
		t.Errorf("ParseKind(pgn): %v", err)
	}
	if _, err := ParseKind("xml"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseKind(xml) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := ParseFormat("json"); err != nil {
		t.Errorf("ParseFormat(json): %v", err)
	}
	if _, err := ParseFormat(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseFormat(\"\") error = %v, want ErrInvalidArgument", err)
	}
}
