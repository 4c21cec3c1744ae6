package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/schollz/progressbar/v3"

	"github.com/stonemill-io/grist/iox"
)

// S3Options configure the client used by the S3 variant.
type S3Options struct {
	// Region is the AWS region (optional, default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
	// AccessKeyID, SecretAccessKey, and SessionToken supply static
	// credentials, bypassing the default chain when set.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// s3API is the request subset the S3 variant issues.
type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Client builds an S3 client from the collector options.
// Uses the AWS SDK default credential chain (env vars, shared config,
// IAM role) unless static credentials are configured. The chain is
// probed once here so missing credentials fail before any listing.
func newS3Client(ctx context.Context, opts S3Options) (s3API, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" || opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	if _, err := awsConfig.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("no AWS credentials available: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if opts.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsConfig, s3Opts...), nil
}

// collectS3 lists the bucket prefix, downloads the allowed objects into
// a workspace directory under their key basename, and returns the local
// paths sorted. Objects sharing a basename overwrite: the last download
// wins.
func (c *Collector) collectS3(ctx context.Context, src Source) ([]string, error) {
	if src.Bucket == "" {
		return nil, newError(ErrInvalidSource, "collect", src.Descriptor, errors.New("S3 path must include a bucket"))
	}

	client := c.s3Client
	if client == nil {
		var err error
		client, err = newS3Client(ctx, c.s3)
		if err != nil {
			return nil, newError(classifyS3Error(err), "connect", src.Descriptor, err)
		}
	}

	keys, err := listAllowedKeys(ctx, client, src, c.filter)
	if err != nil {
		return nil, newError(classifyS3Error(err), "list", src.Descriptor, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	dest, err := c.ws.TempDir()
	if err != nil {
		return nil, newError(ErrRemoteList, "download", src.Descriptor, err)
	}

	bar := c.newDownloadBar(len(keys))
	files := make([]string, 0, len(keys))
	for _, key := range keys {
		local := filepath.Join(dest, path.Base(key))
		if err := downloadObject(ctx, client, src.Bucket, key, local); err != nil {
			return nil, newError(classifyS3Error(err), "download", key, err)
		}
		c.metrics.IncDownload()
		c.logger.Info("downloaded object", map[string]any{"key": key, "local": local})
		if bar != nil {
			_ = bar.Add(1)
		}
		files = append(files, local)
	}
	if bar != nil {
		iox.DiscardErr(bar.Finish)
	}

	sort.Strings(files)
	return files, nil
}

// listAllowedKeys pages through the prefix and keeps the keys whose
// extension passes the filter, in listing order.
func listAllowedKeys(ctx context.Context, client s3API, src Source, filter ExtFilter) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(src.Bucket),
	}
	if src.Prefix != "" {
		input.Prefix = aws.String(src.Prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if filter.Allows(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

// downloadObject streams one object to a local file.
func downloadObject(ctx context.Context, client s3API, bucket, key, local string) error {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer iox.DiscardClose(out.Body)

	f, err := os.Create(local)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("download %s: %w", key, err)
	}
	return f.Close()
}

// newDownloadBar builds the stderr progress bar for object downloads.
// Returns nil when progress display is disabled.
func (c *Collector) newDownloadBar(total int) *progressbar.ProgressBar {
	if !c.progress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
