package s3client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/andreyxaxa/image-uploader/pkg/oneshot"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultLoadTimeout  = 10 * time.Second
	_defaultRegion       = "auto"
)

// S3Client connects lazily: New returns at once and the first Client call
// waits until the connection check has finished.
type S3Client struct {
	connAttempts int
	connTimeout  time.Duration
	loadTimeout  time.Duration

	endpoint     string
	region       string
	accessKey    string
	secretKey    string
	bucket       string
	usePathStyle bool

	client *oneshot.Value[*s3.Client]
}

func New(ctx context.Context, endpoint, accessKey, secretKey string, opts ...Option) *S3Client {
	s3c := &S3Client{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		loadTimeout:  _defaultLoadTimeout,
		region:       _defaultRegion,
		endpoint:     endpoint,
		accessKey:    accessKey,
		secretKey:    secretKey,
		usePathStyle: true,
	}

	for _, opt := range opts {
		opt(s3c)
	}

	s3c.client = oneshot.New(ctx, s3c.dial)

	return s3c
}

// Start kicks off the connection in the background.
func (s *S3Client) Start() {
	s.client.Start()
}

func (s *S3Client) State() oneshot.State {
	return s.client.State()
}

func (s *S3Client) Client(ctx context.Context) (*s3.Client, error) {
	c, err := s.client.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("S3Client - Client: %w", err)
	}

	return c, nil
}

func (s *S3Client) dial(ctx context.Context) (*s3.Client, error) {
	var (
		c   *s3.Client
		err error
	)

	attempts := s.connAttempts
	for attempts > 0 {
		attemptCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
		c, err = s.connect(attemptCtx)
		cancel()
		if err == nil {
			return c, nil
		}

		log.Printf("S3 is trying to connect, attempts left: %d", attempts)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("S3Client - dial: %w", ctx.Err())
		case <-time.After(s.connTimeout):
		}

		attempts--
	}

	return nil, fmt.Errorf("S3Client - dial - connAttempts == 0: %w", err)
}

func (s *S3Client) connect(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(s.region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKey, s.secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("S3Client - config.LoadDefaultConfig: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = s.usePathStyle
		o.BaseEndpoint = aws.String(s.endpoint)
	})

	// check connection
	if s.bucket != "" {
		_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
		if err != nil {
			return nil, fmt.Errorf("S3Client - client.HeadBucket: %w", err)
		}

		return client, nil
	}

	_, err = client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("S3Client - client.ListBuckets: %w", err)
	}

	return client, nil
}
