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
	"io"
	"time"

	"cloud.google.com/go/storage"
	log "github.com/golang/glog"
)

type gcsReaderFactory interface {
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

type gcsWriterFactory interface {
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
}

type actualGCSFactory struct {
	client *storage.Client
}

func (a *actualGCSFactory) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return a.client.Bucket(bucket).Object(object).NewReader(ctx)
}

func (a *actualGCSFactory) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := a.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

// GCSDestination writes each batch as a single Cloud Storage object under TableName in Bucket.
type GCSDestination struct {
	Bucket    string
	TableName string
	gwf       gcsWriterFactory
}

// NewGCSDestination returns a GCSDestination that writes through client.
func NewGCSDestination(client *storage.Client, bucket, table string) *GCSDestination {
	return &GCSDestination{Bucket: bucket, TableName: table, gwf: &actualGCSFactory{client}}
}

// Save writes b to gs://<bucket>/<table>/extracted_at=<date>/<HHMMSS>.<format>.
func (d *GCSDestination) Save(ctx context.Context, b *Batch, format Format, extractedAt time.Time) error {
	body, err := Encode(b, format)
	if err != nil {
		return err
	}

	key := ObjectKey(d.TableName, extractedAt, format)
	log.V(2).Infof("writing gs://%s/%s (%d bytes)", d.Bucket, key, len(body))

	w := d.gwf.NewWriter(ctx, d.Bucket, key, contentType(format))
	if _, err := w.Write(body); err != nil {
		w.Close()
		return ioErrorf(err, "failed to write gs://%s/%s", d.Bucket, key)
	}
	// The upload is only committed, and its errors reported, on Close.
	if err := w.Close(); err != nil {
		return ioErrorf(err, "failed to finalize gs://%s/%s", d.Bucket, key)
	}

	log.Infof("wrote %d records to gs://%s/%s", b.Len(), d.Bucket, key)
	return nil
}
