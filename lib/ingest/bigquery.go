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
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	log "github.com/golang/glog"
	"google.golang.org/api/googleapi"
)

type actualBQ struct {
	client  *bigquery.Client
	dataset *bigquery.Dataset
	table   *bigquery.Table
}

type actualBQFactory struct {
	projectID string
}

func (bqf *actualBQFactory) Make(ctx context.Context) (bq, error) {
	bqClient, err := bigquery.NewClient(ctx, bqf.projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bigquery client: %w", err)
	}
	return &actualBQ{client: bqClient}, nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

func (bq *actualBQ) EnsureDataset(ctx context.Context, datasetName string) error {
	ds := bq.client.Dataset(datasetName)
	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return ioErrorf(err, "failed to get metadata for dataset %q", datasetName)
		}
		log.Warningf("dataset %q not found, creating it", datasetName)
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{Name: datasetName, Description: "Generated chess games"}); err != nil {
			return ioErrorf(err, "failed to create dataset %q", datasetName)
		}
	}
	bq.dataset = ds
	return nil
}

func (bq *actualBQ) EnsureTable(ctx context.Context, tableName string) error {
	t := bq.dataset.Table(tableName)
	if _, err := t.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return ioErrorf(err, "failed to get metadata for table %q", tableName)
		}
		log.Warningf("table %q not found, creating it", tableName)
		schema, err := bigquery.InferSchema(bqRow{})
		if err != nil {
			return fmt.Errorf("failed to infer schema: %w", err)
		}
		md := &bigquery.TableMetadata{
			Name:             tableName,
			Description:      "Generated chess games",
			Schema:           schema,
			TimePartitioning: &bigquery.TimePartitioning{Field: "extracted_at"},
		}
		if err := t.Create(ctx, md); err != nil {
			return ioErrorf(err, "failed to create table %q", tableName)
		}
	}
	bq.table = t
	return nil
}

func (bq *actualBQ) PutRows(ctx context.Context, rows []*bqRow) error {
	return bq.table.Inserter().Put(ctx, rows)
}

func (bq *actualBQ) Close() error {
	return bq.client.Close()
}

// BigQueryDestination streams structured games into Dataset.TableName. It
// only accepts game batches in JSON format.
type BigQueryDestination struct {
	Dataset   string
	TableName string
	client    bq
}

// NewBigQueryDestination connects to BigQuery in projectID and makes sure the
// dataset and table exist, creating them if needed.
func NewBigQueryDestination(ctx context.Context, projectID, dataset, table string) (*BigQueryDestination, error) {
	return newBigQueryDestination(ctx, &actualBQFactory{projectID: projectID}, dataset, table)
}

func newBigQueryDestination(ctx context.Context, bqf bqFactory, dataset, table string) (*BigQueryDestination, error) {
	if dataset == "" || table == "" {
		return nil, invalidArgf("bigquery destination needs a dataset and a table, got %q and %q", dataset, table)
	}
	client, err := bqf.Make(ctx)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureDataset(ctx, dataset); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.EnsureTable(ctx, table); err != nil {
		client.Close()
		return nil, err
	}
	return &BigQueryDestination{Dataset: dataset, TableName: table, client: client}, nil
}

// Save inserts every game of b in a single streaming insert.
func (d *BigQueryDestination) Save(ctx context.Context, b *Batch, format Format, extractedAt time.Time) error {
	if format != FormatJSON {
		return invalidArgf("bigquery destination only writes %q, got %q", FormatJSON, format)
	}
	if b != nil && b.Kind != KindGame {
		return invalidArgf("bigquery destination needs %q batches, got %q", KindGame, b.Kind)
	}
	if b.Len() == 0 {
		log.Infof("no records to insert into %s.%s", d.Dataset, d.TableName)
		return nil
	}

	rows := make([]*bqRow, len(b.Games))
	for i, g := range b.Games {
		rows[i] = newBQRow(g, extractedAt)
	}
	if err := d.client.PutRows(ctx, rows); err != nil {
		return ioErrorf(err, "failed to insert %d rows into %s.%s", len(rows), d.Dataset, d.TableName)
	}

	log.Infof("inserted %d records into %s.%s", len(rows), d.Dataset, d.TableName)
	return nil
}

// Close releases the BigQuery client.
func (d *BigQueryDestination) Close() error {
	return d.client.Close()
}
