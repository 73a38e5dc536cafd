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
	"time"

	"cloud.google.com/go/civil"
	"github.com/chessingest/chess-data-ingestion/lib/chess"
)

type bqFactory interface {
	Make(ctx context.Context) (bq, error)
}

type bq interface {
	EnsureDataset(ctx context.Context, datasetName string) error
	EnsureTable(ctx context.Context, tableName string) error
	PutRows(ctx context.Context, rows []*bqRow) error
	Close() error
}

// bqRow is one game as stored in BigQuery; the table schema is inferred from it.
type bqRow struct {
	ExtractedAt     civil.Date `bigquery:"extracted_at"`
	ExtractedTime   time.Time  `bigquery:"extracted_time"`
	Event           string     `bigquery:"event"`
	Site            string     `bigquery:"site"`
	White           string     `bigquery:"white"`
	Black           string     `bigquery:"black"`
	Result          string     `bigquery:"result"`
	UTCDate         string     `bigquery:"utc_date"`
	UTCTime         string     `bigquery:"utc_time"`
	WhiteElo        int        `bigquery:"white_elo"`
	BlackElo        int        `bigquery:"black_elo"`
	WhiteRatingDiff int        `bigquery:"white_rating_diff"`
	BlackRatingDiff int        `bigquery:"black_rating_diff"`
	ECO             string     `bigquery:"eco"`
	Opening         string     `bigquery:"opening"`
	TimeControl     string     `bigquery:"time_control"`
	Termination     string     `bigquery:"termination"`
	Moves           string     `bigquery:"moves"`
}

func newBQRow(g chess.Game, extractedAt time.Time) *bqRow {
	return &bqRow{
		ExtractedAt:     civil.DateOf(extractedAt),
		ExtractedTime:   extractedAt,
		Event:           g.Event,
		Site:            g.Site,
		White:           g.White,
		Black:           g.Black,
		Result:          g.Result,
		UTCDate:         g.UTCDate,
		UTCTime:         g.UTCTime,
		WhiteElo:        g.WhiteElo,
		BlackElo:        g.BlackElo,
		WhiteRatingDiff: g.WhiteRatingDiff,
		BlackRatingDiff: g.BlackRatingDiff,
		ECO:             g.ECO,
		Opening:         g.Opening,
		TimeControl:     g.TimeControl,
		Termination:     g.Termination,
		Moves:           g.Moves,
	}
}
