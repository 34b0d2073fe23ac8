package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// S3Repository reads the document from an object in an S3 bucket.
type S3Repository struct {
	document
	Name       string // Name of the source
	BucketName string // Name of the S3 bucket
	ObjectName string // Key of the YAML object
	Region     string // Optional region, otherwise taken from the environment
	Endpoint   string // Optional endpoint for S3 compatible stores

	// Optional static credentials. The default credential chain is used
	// when AccessKeyID is empty.
	AccessKeyID     string
	SecretAccessKey string

	Client        *s3.Client // S3 client, created on first refresh when nil
	clientOnce    sync.Once
	clientInitErr error
}

// GetName returns the name of the source.
func (a *S3Repository) GetName() string {
	return a.Name
}

func (a *S3Repository) initClient(ctx context.Context) error {
	a.clientOnce.Do(func() {
		if a.Client != nil {
			return
		}
		var opts []func(*config.LoadOptions) error
		if a.Region != "" {
			opts = append(opts, config.WithRegion(a.Region))
		}
		if a.AccessKeyID != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretAccessKey, ""),
			))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			a.clientInitErr = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		a.Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if a.Endpoint != "" {
				o.BaseEndpoint = aws.String(a.Endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return a.clientInitErr
}

// Refresh downloads the object again.
func (a *S3Repository) Refresh(ctx context.Context) error {
	if err := a.initClient(ctx); err != nil {
		return err
	}

	result, err := a.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.BucketName),
		Key:    aws.String(a.ObjectName),
	})
	if err != nil {
		logrus.WithField("bucket", a.BucketName).Debug("error getting object")
		return err
	}
	defer result.Body.Close()

	fileContent, err := io.ReadAll(result.Body)
	if err != nil {
		return err
	}
	return a.store(fileContent)
}
