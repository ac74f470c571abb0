package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/nobs/internal/filex"
	"github.com/dmitrijs2005/nobs/internal/logging"
	sc "github.com/dmitrijs2005/nobs/internal/server/config"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store writes through a LocalStore and mirrors each file to a bucket.
// A failed upload fails Save; failures while deleting mirrored objects are
// logged and ignored.
type S3Store struct {
	local  *LocalStore
	client objectAPI
	bucket string
	log    logging.Logger
}

func NewS3Store(ctx context.Context, local *LocalStore, config *sc.Config, log logging.Logger) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.S3RootUser,
			config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		local:  local,
		client: client,
		bucket: config.S3Bucket,
		log:    log.With("module", "storage.s3"),
	}, nil
}

func (s *S3Store) EntryDir(entryID string) string {
	return s.local.EntryDir(entryID)
}

func (s *S3Store) Save(ctx context.Context, entryID string, kind Kind, filename string, r io.Reader) (string, error) {
	p, err := s.local.Save(ctx, entryID, kind, filename, r)
	if err != nil {
		return "", err
	}

	key, err := s.local.relKey(p)
	if err != nil {
		return "", err
	}

	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return "", fmt.Errorf("mirror %s: %w", key, err)
	}
	return p, nil
}

func (s *S3Store) DeleteEntry(ctx context.Context, entryID string) error {
	if err := s.local.DeleteEntry(ctx, entryID); err != nil {
		return err
	}

	prefix := path.Join(filex.ShardPrefix(entryID), entryID) + "/"
	if err := s.deletePrefix(ctx, prefix); err != nil {
		s.log.Warn(ctx, "mirror cleanup failed", "entry_id", entryID, "error", err)
	}
	return nil
}

func (s *S3Store) deletePrefix(ctx context.Context, prefix string) error {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, o := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: o.Key})
		}
		if _, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return err
		}
	}
	return nil
}
