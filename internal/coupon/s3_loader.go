package coupon

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ObjectGetter is the slice of the S3 API the tier loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Loader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader builds a tier loader backed by the given bucket, resolving
// credentials through the default AWS chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config for region %s: %w", region, err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("tier loader bound to S3 bucket")

	return NewS3LoaderWithClient(s3.NewFromConfig(awsCfg), bucket, logger), nil
}

// NewS3LoaderWithClient wraps an already configured client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-tier-loader").Str("bucket", bucket).Logger(),
	}
}

// Load fetches the object stored under key and parses it as a tier table.
func (l *s3Loader) Load(ctx context.Context, key string) ([]Tier, error) {
	log := l.logger.With().Str("key", key).Logger()

	obj, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Msg("tier object fetch failed")
		return nil, fmt.Errorf("get s3://%s/%s: %w", l.bucket, key, err)
	}
	defer obj.Body.Close()

	tiers, err := decodeTiers(obj.Body)
	if err != nil {
		log.Error().Err(err).Msg("tier object is malformed")
		return nil, fmt.Errorf("parse s3://%s/%s: %w", l.bucket, key, err)
	}

	log.Info().Int("tiers", len(tiers)).Msg("tiers loaded from S3")
	return tiers, nil
}

// fallbackLoader prefers the remote copy of a tier table and reads the
// local file when the remote one is unavailable.
type fallbackLoader struct {
	remote    Loader
	local     Loader
	keyPrefix string
	useRemote bool
	logger    zerolog.Logger
}

// NewFallbackLoader combines a remote and a local loader. A nil remote or a
// false s3Enabled makes it behave exactly like the local loader.
func NewFallbackLoader(remote, local Loader, keyPrefix string, s3Enabled bool, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		remote:    remote,
		local:     local,
		keyPrefix: keyPrefix,
		useRemote: s3Enabled && remote != nil,
		logger:    logger.With().Str("component", "fallback-tier-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) ([]Tier, error) {
	if !l.useRemote {
		return l.local.Load(ctx, path)
	}

	key := l.keyPrefix + path
	tiers, err := l.remote.Load(ctx, key)
	if err != nil {
		l.logger.Warn().Err(err).Str("s3_key", key).Str("path", path).Msg("remote tiers unavailable, reading local file")
		return l.local.Load(ctx, path)
	}
	return tiers, nil
}
