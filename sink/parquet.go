package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/snappy"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/trades"
)

var ErrParquetDisabled = errors.New("parquet sink disabled: no output directory or bucket")

// S3Config locates an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

func (c S3Config) enabled() bool {
	return c.Bucket != ""
}

// Parquet writes one snappy-compressed file per slot to a local directory,
// an S3 bucket, or both.
type Parquet struct {
	dir      string
	s3       S3Config
	uploader *s3manager.Uploader
	logger   *logrus.Logger
}

func NewParquet(dir string, s3cfg S3Config, logger *logrus.Logger) (*Parquet, error) {
	if dir == "" && !s3cfg.enabled() {
		return nil, ErrParquetDisabled
	}
	if logger == nil {
		logger = logrus.New()
	}

	p := &Parquet{dir: dir, s3: s3cfg, logger: logger}
	if !s3cfg.enabled() {
		return p, nil
	}

	awsCfg := &aws.Config{Region: aws.String(s3cfg.Region)}
	if s3cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(s3cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if s3cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(s3cfg.AccessKey, s3cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	p.uploader = s3manager.NewUploader(sess)
	return p, nil
}

func (p *Parquet) Write(ctx context.Context, batch trades.Batch) error {
	data, err := encodeParquet(newRows(batch))
	if err != nil {
		return err
	}

	if p.dir != "" {
		file, err := slotPath(p.dir, batch, ".parquet")
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}

	if p.uploader != nil {
		key := p.objectKey(batch)
		_, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(p.s3.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/octet-stream"),
		})
		if err != nil {
			return fmt.Errorf("upload parquet to s3: %w", err)
		}
		p.logger.WithFields(logrus.Fields{"slot": batch.Slot, "key": key}).Debug("parquet uploaded")
	}
	return nil
}

func (p *Parquet) objectKey(batch trades.Batch) string {
	prefix := strings.Trim(p.s3.Prefix, "/")
	return path.Join(prefix, "date="+batch.Date, strconv.FormatUint(batch.Slot, 10)+".parquet")
}

func (p *Parquet) Close() error {
	return nil
}

func encodeParquet(rows []Row) ([]byte, error) {
	buf := bytes.NewBuffer(nil)

	writer := parquet.NewGenericWriter[Row](buf, parquet.Compression(&snappy.Codec{}))
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
