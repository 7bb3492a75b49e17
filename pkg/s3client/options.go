package s3client

import "time"

type Option func(c *S3Client)

func ConnAttempts(attempts int) Option {
	return func(c *S3Client) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *S3Client) {
		c.connTimeout = timeout
	}
}

// LoadTimeout bounds a single connection attempt.
func LoadTimeout(timeout time.Duration) Option {
	return func(c *S3Client) {
		c.loadTimeout = timeout
	}
}

func Region(region string) Option {
	return func(c *S3Client) {
		if region != "" {
			c.region = region
		}
	}
}

func UsePathStyle(use bool) Option {
	return func(c *S3Client) {
		c.usePathStyle = use
	}
}

// Bucket makes connect verify access to the bucket instead of listing all
// buckets. R2 tokens are usually scoped to a single bucket.
func Bucket(bucket string) Option {
	return func(c *S3Client) {
		c.bucket = bucket
	}
}
