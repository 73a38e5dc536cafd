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
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	log "github.com/golang/glog"
	"gopkg.in/yaml.v2"
)

const (
	// APIVersion is the only supported config apiVersion.
	APIVersion = "chess-data-ingestion/v1"

	gcsScheme = "gs://"
)

// Destination types.
const (
	DestinationLocal    = "local"
	DestinationS3       = "s3"
	DestinationGCS      = "gcs"
	DestinationBigQuery = "bigquery"
)

// Config is the (YAML-based) configuration file for an ingestion job.
type Config struct {
	APIVersion string    `yaml:"apiVersion"`
	Kind       string    `yaml:"kind"`
	Metadata   *Metadata `yaml:"metadata"`
	Spec       *Spec     `yaml:"spec"`
}

// Metadata is a KRD-compliant data container used for metadata references.
type Metadata struct {
	Name string `yaml:"name"`
}

// Spec holds the job settings.
type Spec struct {
	Source      *SourceSpec      `yaml:"source"`
	Destination *DestinationSpec `yaml:"destination"`
	Metrics     *MetricsSpec     `yaml:"metrics"`
}

// SourceSpec configures record generation.
type SourceSpec struct {
	Kind       string `yaml:"kind"`
	NumRecords int    `yaml:"numRecords"`
	Seed       uint64 `yaml:"seed"`
	Filter     string `yaml:"filter"`
}

// DestinationSpec configures where batches are written.
type DestinationSpec struct {
	Type       string `yaml:"type"`
	RootPath   string `yaml:"rootPath"`
	BucketName string `yaml:"bucketName"`
	TableName  string `yaml:"tableName"`
	FileFormat string `yaml:"fileFormat"`
	Dataset    string `yaml:"dataset"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
}

// MetricsSpec configures where run metrics are pushed.
type MetricsSpec struct {
	PushgatewayURL string `yaml:"pushgatewayURL"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		APIVersion: APIVersion,
		Kind:       "ChessIngestion",
		Metadata:   &Metadata{Name: "chess-data-ingestion"},
		Spec: &Spec{
			Source:      &SourceSpec{Kind: string(KindPGN)},
			Destination: &DestinationSpec{Type: DestinationLocal, FileFormat: string(FormatPGN)},
			Metrics:     &MetricsSpec{},
		},
	}
}

// Validate checks that d names a known destination type with every setting it requires.
func (d *DestinationSpec) Validate() error {
	if d.TableName == "" {
		return invalidArgf("tableName is required")
	}
	if _, err := ParseFormat(d.FileFormat); err != nil {
		return err
	}
	switch d.Type {
	case DestinationLocal:
		if d.RootPath == "" {
			return invalidArgf("rootPath is required when destination is %q", d.Type)
		}
	case DestinationS3, DestinationGCS:
		if d.BucketName == "" {
			return invalidArgf("bucketName is required when destination is %q", d.Type)
		}
	case DestinationBigQuery:
		if d.Dataset == "" {
			return invalidArgf("dataset is required when destination is %q", d.Type)
		}
		if Format(d.FileFormat) != FormatJSON {
			return invalidArgf("fileFormat must be %q when destination is %q", FormatJSON, d.Type)
		}
	default:
		return invalidArgf("unknown destination type %q", d.Type)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.APIVersion != APIVersion {
		return invalidArgf("expected `apiVersion` %q, got %q", APIVersion, cfg.APIVersion)
	}
	if cfg.Spec == nil || cfg.Spec.Source == nil || cfg.Spec.Destination == nil {
		return invalidArgf("expected `spec.source` and `spec.destination` to be present")
	}
	if cfg.Spec.Metrics == nil {
		cfg.Spec.Metrics = &MetricsSpec{}
	}
	if cfg.Spec.Source.Kind == "" {
		cfg.Spec.Source.Kind = string(KindPGN)
	}
	if _, err := ParseKind(cfg.Spec.Source.Kind); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads the YAML config at path, which is either a local file or
// a `gs://bucket/object` path read through sc. Destination settings are
// validated separately so command-line flags can fill them in first.
func LoadConfig(ctx context.Context, path string, sc *storage.Client) (*Config, error) {
	var grf gcsReaderFactory
	if sc != nil {
		grf = &actualGCSFactory{sc}
	}
	return loadConfig(ctx, path, grf)
}

func loadConfig(ctx context.Context, path string, grf gcsReaderFactory) (*Config, error) {
	var r io.ReadCloser
	if strings.HasPrefix(path, gcsScheme) {
		if grf == nil {
			return nil, invalidArgf("no Cloud Storage client to read %q", path)
		}
		gr, err := getGCSReader(ctx, grf, path)
		if err != nil {
			return nil, err
		}
		r = gr
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, ioErrorf(err, "failed to open config %q", path)
		}
		r = f
	}
	defer r.Close()

	cfg, err := decodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration from YAML at %q: %w", path, err)
	}
	log.V(2).Infof("got config from %q: %+v", path, cfg)
	return cfg, nil
}

func decodeConfig(r io.Reader) (*Config, error) {
	cfg := new(Config)
	dcd := yaml.NewDecoder(r)
	dcd.SetStrict(true)
	if err := dcd.Decode(cfg); err != nil {
		return nil, invalidArgf("%v", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getGCSReader opens the object at the given `gs://bucket/path/to/object` path.
func getGCSReader(ctx context.Context, grf gcsReaderFactory, path string) (io.ReadCloser, error) {
	trm := strings.TrimPrefix(path, gcsScheme)
	split := strings.SplitN(trm, "/", 2)
	log.V(2).Infof("got path split: %+v", split)
	if len(split) != 2 || split[0] == "" || split[1] == "" {
		return nil, invalidArgf("path has incorrect format (expected form: `gs://bucket/path/to/object`): %q", path)
	}

	bucket, object := split[0], split[1]
	r, err := grf.NewReader(ctx, bucket, object)
	if err != nil {
		return nil, ioErrorf(err, "failed to get reader for (bucket=%q, object=%q)", bucket, object)
	}
	return r, nil
}

// GetEnv fetches, logs, and returns the given environment variable. The returned boolean is true iff the value is non-empty.
func GetEnv(name string) (string, bool) {
	val := os.Getenv(name)
	if val == "" {
		log.Warningf("env var %q is empty", name)
	} else {
		log.V(2).Infof("env var %q is %q", name, val)
	}
	return val, val != ""
}
