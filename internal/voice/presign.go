// Package voice hands out presigned S3 PUT URLs for voice notes.
//
// The client uploads the recording directly to the bucket and then passes the
// returned object key as the ghost's voiceKey. Objects are keyed under the
// uploading user so a ghost can only reference its owner's recordings.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/config"
)

const keyPrefix = "voice/"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Upload is a presigned upload slot.
type Upload struct {
	VoiceKey  string    `json:"voiceKey"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Presigner issues upload slots in the configured bucket.
type Presigner struct {
	cfg    config.VoiceConfig
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	mu     sync.Mutex
	client *s3.PresignClient
}

// Option configures a Presigner.
type Option func(*Presigner)

// WithClock sets the time source used for object keys and expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Presigner) {
		p.now = now
	}
}

// WithIDGenerator sets the object id generator.
func WithIDGenerator(newID func() string) Option {
	return func(p *Presigner) {
		p.newID = newID
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Presigner) {
		p.logger = logger
	}
}

// NewPresigner creates a Presigner. The S3 client is built on first use.
func NewPresigner(cfg config.VoiceConfig, opts ...Option) *Presigner {
	p := &Presigner{
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg.PresignExpiry <= 0 {
		p.cfg.PresignExpiry = config.DefaultPresignExpiry
	}
	return p
}

// Enabled reports whether a bucket is configured.
func (p *Presigner) Enabled() bool {
	return p.cfg.Bucket != ""
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(p.cfg.Region)}
	if p.cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.cfg.AccessKey, p.cfg.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	p.client = newS3PresignClient(client)
	return p.client, nil
}

// PresignUpload reserves a new object key for userID and returns a URL the
// client can PUT the recording to until ExpiresAt.
func (p *Presigner) PresignUpload(ctx context.Context, userID string) (Upload, error) {
	if !p.Enabled() {
		return Upload{}, &apperr.NotConfiguredError{Provider: "voice storage"}
	}
	if userID == "" {
		return Upload{}, apperr.Validation("user id is required")
	}

	pc, err := p.presignClient(ctx)
	if err != nil {
		return Upload{}, err
	}

	now := p.now()
	key := ObjectKey(userID, now, p.newID())
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.cfg.PresignExpiry))
	if err != nil {
		return Upload{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	p.logger.Debug("presigned voice upload", "user_id", userID, "voice_key", key)
	return Upload{
		VoiceKey:  key,
		UploadURL: req.URL,
		ExpiresAt: now.Add(p.cfg.PresignExpiry).UTC(),
	}, nil
}

// ObjectKey is the bucket key of a recording: voice/<user>/<yyyy>/<mm>/<dd>/<id>.
func ObjectKey(userID string, at time.Time, id string) string {
	at = at.UTC()
	return fmt.Sprintf("%s%s/%04d/%02d/%02d/%s", keyPrefix, userID, at.Year(), int(at.Month()), at.Day(), id)
}

// OwnedBy reports whether key was issued to userID.
func OwnedBy(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, keyPrefix+userID+"/")
}
