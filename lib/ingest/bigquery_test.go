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
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/chessingest/chess-data-ingestion/lib/chess"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/googleapi"
)

var fakeBQErrors = map[string]error{
	"noauth": &googleapi.Error{Code: 403, Message: "no authorization"},
	"broke":  &googleapi.Error{Code: 500, Message: "bq server error"},
}

type mockBQ struct {
	puts   [][]*bqRow
	putErr error
	closed bool
}

func (m *mockBQ) EnsureDataset(_ context.Context, datasetName string) error {
	return fakeBQErrors[datasetName]
}

func (m *mockBQ) EnsureTable(_ context.Context, tableName string) error {
	return fakeBQErrors[tableName]
}

func (m *mockBQ) PutRows(_ context.Context, rows []*bqRow) error {
	m.puts = append(m.puts, rows)
	return m.putErr
}

func (m *mockBQ) Close() error {
	m.closed = true
	return nil
}

type mockBQFactory struct {
	client *mockBQ
	err    error
}

func (f *mockBQFactory) Make(context.Context) (bq, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func TestNewBigQueryDestination(t *testing.T) {
	for _, tc := range []struct {
		name       string
		factory    *mockBQFactory
		dataset    string
		table      string
		wantErr    bool
		wantClosed bool
	}{{
		name:    "valid",
		factory: &mockBQFactory{client: &mockBQ{}},
		dataset: "chess",
		table:   "games",
	}, {
		name:    "missing dataset",
		factory: &mockBQFactory{client: &mockBQ{}},
		table:   "games",
		wantErr: true,
	}, {
		name:    "client error",
		factory: &mockBQFactory{err: errors.New("no credentials")},
		dataset: "chess",
		table:   "games",
		wantErr: true,
	}, {
		name:       "dataset forbidden",
		factory:    &mockBQFactory{client: &mockBQ{}},
		dataset:    "noauth",
		table:      "games",
		wantErr:    true,
		wantClosed: true,
	}, {
		name:       "table server error",
		factory:    &mockBQFactory{client: &mockBQ{}},
		dataset:    "chess",
		table:      "broke",
		wantErr:    true,
		wantClosed: true,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := newBigQueryDestination(context.Background(), tc.factory, tc.dataset, tc.table)
			if tc.factory.client != nil && tc.factory.client.closed != tc.wantClosed {
				t.Errorf("client closed = %v, want %v", tc.factory.client.closed, tc.wantClosed)
			}
			if err != nil {
				if tc.wantErr {
					t.Logf("got expected error: %v", err)
					return
				}
				t.Fatalf("newBigQueryDestination failed: %v", err)
			}
			if tc.wantErr {
				t.Fatal("newBigQueryDestination succeeded unexpectedly")
			}
			if d.Dataset != tc.dataset || d.TableName != tc.table {
				t.Errorf("got destination %s.%s, want %s.%s", d.Dataset, d.TableName, tc.dataset, tc.table)
			}
		})
	}
}

func TestBigQueryDestinationSave(t *testing.T) {
	client := &mockBQ{}
	d := &BigQueryDestination{Dataset: "chess", TableName: "games", client: client}
	b := &Batch{Kind: KindGame, Games: []chess.Game{testGame, testGame}}

	if err := d.Save(context.Background(), b, FormatJSON, testExtractedAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(client.puts) != 1 {
		t.Fatalf("got %d inserts, want 1", len(client.puts))
	}

	want := newBQRow(testGame, testExtractedAt)
	if want.ExtractedAt != (civil.Date{Year: 2024, Month: 3, Day: 9}) {
		t.Errorf("extracted_at = %v, want 2024-03-09", want.ExtractedAt)
	}
	if diff := cmp.Diff([]*bqRow{want, want}, client.puts[0]); diff != "" {
		t.Errorf("unexpected rows (want- got+)\n%s", diff)
	}
}

func TestBigQueryDestinationSaveErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		batch   *Batch
		format  Format
		putErr  error
		wantErr error
	}{{
		name:    "pgn format",
		batch:   &Batch{Kind: KindGame, Games: []chess.Game{testGame}},
		format:  FormatPGN,
		wantErr: ErrInvalidArgument,
	}, {
		name:    "pgn batch",
		batch:   &Batch{Kind: KindPGN, PGN: []string{"x"}},
		format:  FormatJSON,
		wantErr: ErrInvalidArgument,
	}, {
		name:    "insert failure",
		batch:   &Batch{Kind: KindGame, Games: []chess.Game{testGame}},
		format:  FormatJSON,
		putErr:  errors.New("quota exceeded"),
		wantErr: ErrIO,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			d := &BigQueryDestination{Dataset: "chess", TableName: "games", client: &mockBQ{putErr: tc.putErr}}
			if err := d.Save(context.Background(), tc.batch, tc.format, testExtractedAt); !errors.Is(err, tc.wantErr) {
				t.Errorf("Save error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestBigQueryDestinationSaveEmpty(t *testing.T) {
	client := &mockBQ{}
	d := &BigQueryDestination{Dataset: "chess", TableName: "games", client: client}
	if err := d.Save(context.Background(), &Batch{Kind: KindGame}, FormatJSON, testExtractedAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(client.puts) != 0 {
		t.Errorf("empty batch issued %d inserts", len(client.puts))
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&googleapi.Error{Code: 404}) {
		t.Error("isNotFound(404) = false")
	}
	if isNotFound(&googleapi.Error{Code: 403}) {
		t.Error("isNotFound(403) = true")
	}
	if isNotFound(errors.New("404")) {
		t.Error("isNotFound on a plain error = true")
	}
}
