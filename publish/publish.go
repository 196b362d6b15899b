// Package publish uploads the artifacts of a training run to an S3 compatible bucket
package publish

import "context"
import "path"
import "path/filepath"

import "github.com/minio/minio-go/v7"
import "github.com/minio/minio-go/v7/pkg/credentials"
import "github.com/pkg/errors"
import log "github.com/sirupsen/logrus"

// Options locate the bucket
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Publisher uploads files under a per run prefix
type Publisher struct {
	client *minio.Client
	bucket string
	runID  string
}

// New creates a Publisher. No request is made until EnsureBucket or Upload.
func New(opts Options, runID string) (*Publisher, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio client")
	}
	return &Publisher{client: client, bucket: opts.Bucket, runID: runID}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return errors.Wrapf(err, "bucket %s", p.bucket)
	}
	if exists {
		return nil
	}
	if err = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "make bucket %s", p.bucket)
	}
	log.WithField("bucket", p.bucket).Info("created bucket")
	return nil
}

// Upload stores every file as <run id>/<file name> and returns the object names
func (p *Publisher) Upload(ctx context.Context, files ...string) ([]string, error) {
	var names []string
	for _, file := range files {
		name := ObjectName(p.runID, file)
		info, err := p.client.FPutObject(ctx, p.bucket, name, file, minio.PutObjectOptions{
			ContentType: ContentType(file),
		})
		if err != nil {
			return names, errors.Wrapf(err, "upload %s", file)
		}
		log.WithFields(log.Fields{"bucket": p.bucket, "object": name, "bytes": info.Size}).Info("uploaded")
		names = append(names, name)
	}
	return names, nil
}

// ObjectName places file under the run prefix
func ObjectName(runID, file string) string {
	return path.Join(runID, filepath.Base(file))
}

// ContentType guesses the content type of a run artifact
func ContentType(file string) string {
	switch filepath.Ext(file) {
	case ".csv":
		return "text/csv"
	case ".json", ".jsonl":
		return "application/json"
	}
	return "application/octet-stream"
}
