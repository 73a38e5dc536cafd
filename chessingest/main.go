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


// Command chessingest generates a batch of fake chess games and writes it to
// a local directory, S3, Cloud Storage or BigQuery.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/chessingest/chess-data-ingestion/lib/chess"
	"github.com/chessingest/chess-data-ingestion/lib/ingest"
	log "github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJobName = "chess_ingest"

type cliFlags struct {
	config         string
	destination    string
	bucketName     string
	rootPath       string
	tableName      string
	dataset        string
	fileFormat     string
	kind           string
	numRecords     int
	seed           uint64
	filter         string
	pushgatewayURL string
	s3Region       string
	s3Endpoint     string
	smoketest      bool
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	f := new(cliFlags)
	fs.StringVar(&f.config, "config", "", "Path to a YAML config file, local or `gs://bucket/object`.")
	fs.StringVar(&f.destination, "destination", "", `Defines the destination for the data: "local", "s3", "gcs" or "bigquery".`)
	fs.StringVar(&f.destination, "d", "", "Shorthand for -destination.")
	fs.StringVar(&f.bucketName, "bucket_name", "", "Bucket name (s3, gcs).")
	fs.StringVar(&f.rootPath, "root_path", "", "Local root path (local).")
	fs.StringVar(&f.tableName, "table_name", "", "Table name.")
	fs.StringVar(&f.dataset, "dataset", "", "BigQuery dataset (bigquery).")
	fs.StringVar(&f.fileFormat, "file_format", "", `Output format: "pgn" or "json".`)
	fs.StringVar(&f.kind, "kind", "", `Record kind: "pgn" text or structured "game".`)
	fs.IntVar(&f.numRecords, "num_records", 0, "Records per run; 0 draws a count in [100, 1000].")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed; 0 seeds from the clock.")
	fs.StringVar(&f.filter, "filter", "", "CEL expression over `game` that generated records must satisfy.")
	fs.StringVar(&f.pushgatewayURL, "pushgateway_url", "", "Prometheus Pushgateway to push run metrics to.")
	fs.StringVar(&f.s3Region, "s3_region", "", "AWS region override (s3).")
	fs.StringVar(&f.s3Endpoint, "s3_endpoint", "", "S3-compatible endpoint; enables path-style addressing (s3).")
	fs.BoolVar(&f.smoketest, "smoketest", false, "If true, main will simply log the resolved destination and exit.")
	return f
}

// applyFlags overrides cfg with every flag explicitly set in fs.
func applyFlags(cfg *ingest.Config, fs *flag.FlagSet, f *cliFlags) {
	src, dst, m := cfg.Spec.Source, cfg.Spec.Destination, cfg.Spec.Metrics
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "destination", "d":
			dst.Type = f.destination
		case "bucket_name":
			dst.BucketName = f.bucketName
		case "root_path":
			dst.RootPath = f.rootPath
		case "table_name":
			dst.TableName = f.tableName
		case "dataset":
			dst.Dataset = f.dataset
		case "file_format":
			dst.FileFormat = f.fileFormat
		case "s3_region":
			dst.Region = f.s3Region
		case "s3_endpoint":
			dst.Endpoint = f.s3Endpoint
		case "kind":
			src.Kind = f.kind
		case "num_records":
			src.NumRecords = f.numRecords
		case "seed":
			src.Seed = f.seed
		case "filter":
			src.Filter = f.filter
		case "pushgateway_url":
			m.PushgatewayURL = f.pushgatewayURL
		}
	})
}

// usageError is reported like a flag parsing error: message, usage, exit 2.
type usageError struct {
	err error
}

func (u *usageError) Error() string { return u.err.Error() }
func (u *usageError) Unwrap() error { return u.err }

func main() {
	f := registerFlags(flag.CommandLine)
	flag.Parse()

	if err := run(context.Background(), flag.CommandLine, f); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], ue)
			flag.Usage()
			os.Exit(2)
		}
		log.Exitf("fatal error: %v", err)
	}
}

func run(ctx context.Context, fs *flag.FlagSet, f *cliFlags) error {
	defer log.Flush()

	var sc *storage.Client
	defer func() {
		if sc != nil {
			sc.Close()
		}
	}()
	storageClient := func() (*storage.Client, error) {
		if sc != nil {
			return sc, nil
		}
		var err error
		if sc, err = storage.NewClient(ctx); err != nil {
			return nil, fmt.Errorf("failed to create new GCS client: %w", err)
		}
		return sc, nil
	}

	cfg := ingest.DefaultConfig()
	if f.config != "" {
		var client *storage.Client
		if strings.HasPrefix(f.config, "gs://") {
			c, err := storageClient()
			if err != nil {
				return err
			}
			client = c
		}
		loaded, err := ingest.LoadConfig(ctx, f.config, client)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	applyFlags(cfg, fs, f)

	if err := cfg.Spec.Destination.Validate(); err != nil {
		return &usageError{err}
	}
	kind, err := ingest.ParseKind(cfg.Spec.Source.Kind)
	if err != nil {
		return &usageError{err}
	}
	format, err := ingest.ParseFormat(cfg.Spec.Destination.FileFormat)
	if err != nil {
		return &usageError{err}
	}
	if cfg.Spec.Destination.Type == ingest.DestinationBigQuery && kind != ingest.KindGame {
		return &usageError{fmt.Errorf("%w: destination %q needs kind %q", ingest.ErrInvalidArgument, ingest.DestinationBigQuery, ingest.KindGame)}
	}

	if f.smoketest {
		log.V(0).Infof("chessingest smoketest: %s destination, table %q, %s records as %s",
			cfg.Spec.Destination.Type, cfg.Spec.Destination.TableName, kind, format)
		return nil
	}

	src, err := ingest.NewMemorySource(chess.NewProvider(cfg.Spec.Source.Seed), kind)
	if err != nil {
		return err
	}
	pred, err := ingest.MakeCELPredicate(cfg.Spec.Source.Filter)
	if err != nil {
		return &usageError{err}
	}
	if pred != nil {
		src.Filter = pred
	}

	dst, closeDst, err := newDestination(ctx, cfg.Spec.Destination, storageClient)
	if err != nil {
		return err
	}
	defer closeDst()

	reg := prometheus.NewRegistry()
	metrics, err := ingest.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	in := &ingest.Ingestor{
		Source:      src,
		Destination: dst,
		Format:      format,
		NumRecords:  cfg.Spec.Source.NumRecords,
		Clock:       time.Now,
		Metrics:     metrics,
	}
	runErr := in.Run(ctx)
	pushMetrics(cfg.Spec.Metrics.PushgatewayURL, reg)
	return runErr
}

func newDestination(ctx context.Context, spec *ingest.DestinationSpec, storageClient func() (*storage.Client, error)) (ingest.Destination, func(), error) {
	noop := func() {}
	switch spec.Type {
	case ingest.DestinationLocal:
		return &ingest.LocalDestination{RootPath: spec.RootPath, TableName: spec.TableName}, noop, nil
	case ingest.DestinationS3:
		d, err := ingest.NewS3Destination(ctx, spec.BucketName, spec.TableName, ingest.S3Options{
			Region:         spec.Region,
			Endpoint:       spec.Endpoint,
			ForcePathStyle: spec.Endpoint != "",
		})
		if err != nil {
			return nil, nil, err
		}
		return d, noop, nil
	case ingest.DestinationGCS:
		sc, err := storageClient()
		if err != nil {
			return nil, nil, err
		}
		return ingest.NewGCSDestination(sc, spec.BucketName, spec.TableName), noop, nil
	case ingest.DestinationBigQuery:
		projectID, ok := ingest.GetEnv("PROJECT_ID")
		if !ok {
			return nil, nil, errors.New("expected PROJECT_ID to be non-empty")
		}
		d, err := ingest.NewBigQueryDestination(ctx, projectID, spec.Dataset, spec.TableName)
		if err != nil {
			return nil, nil, err
		}
		return d, func() {
			if err := d.Close(); err != nil {
				log.Warningf("failed to close BigQuery client: %v", err)
			}
		}, nil
	}
	return nil, nil, &usageError{fmt.Errorf("%w: unknown destination type %q", ingest.ErrInvalidArgument, spec.Type)}
}

func pushMetrics(url string, g prometheus.Gatherer) {
	if url == "" {
		return
	}
	if err := push.New(url, pushJobName).Gatherer(g).Push(); err != nil {
		log.Warningf("failed to push metrics to %q: %v", url, err)
		return
	}
	log.V(2).Infof("pushed run metrics to %q", url)
}
