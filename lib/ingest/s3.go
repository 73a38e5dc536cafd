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
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/golang/glog"
)

// S3PutObjectAPI is the part of *s3.Client used by S3Destination.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client built by NewS3Destination.
type S3Options struct {
	Region string
	// Endpoint and ForcePathStyle target S3-compatible stores.
	Endpoint       string
	ForcePathStyle bool
}

// S3Destination writes each batch as a single object under TableName in Bucket.
type S3Destination struct {
	Bucket    string
	TableName string
	Client    S3PutObjectAPI
}

// NewS3Destination builds an S3 client from the default AWS configuration chain.
func NewS3Destination(ctx context.Context, bucket, table string, opts S3Options) (*S3Destination, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})
	return &S3Destination{Bucket: bucket, TableName: table, Client: client}, nil
}

// Save issues one PutObject call for b.
func (d *S3Destination) Save(ctx context.Context, b *Batch, format Format, extractedAt time.Time) error {
	body, err := Encode(b, format)
	if err != nil {
		return err
	}

	key := ObjectKey(d.TableName, extractedAt, format)
	log.V(2).Infof("putting s3://%s/%s (%d bytes)", d.Bucket, key, len(body))
	if _, err := d.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType(format)),
	}); err != nil {
		return ioErrorf(err, "failed to upload s3://%s/%s", d.Bucket, key)
	}

	log.Infof("wrote %d records to s3://%s/%s", b.Len(), d.Bucket, key)
	return nil
}

func contentType(format Format) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "application/vnd.chess-pgn"
}
