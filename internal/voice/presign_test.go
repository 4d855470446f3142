package voice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rickgao/phantom-ledger/internal/apperr"
	"github.com/rickgao/phantom-ledger/internal/config"
)

// stubAWS replaces the AWS seams for one test and restores them afterwards.
func stubAWS(t *testing.T) {
	t.Helper()

	origLoad, origNewS3, origNewPre, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + aws.ToString(in.Key) + "?X-Amz-Signature=sig"}, nil
	}
}

func testConfig() config.VoiceConfig {
	return config.VoiceConfig{
		Bucket:        "phantom-voice",
		Region:        "us-east-1",
		Endpoint:      "http://127.0.0.1:9000",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
		PresignExpiry: 10 * time.Minute,
	}
}

func TestPresignUpload(t *testing.T) {
	stubAWS(t)

	now := time.Date(2025, 6, 7, 23, 30, 0, 0, time.UTC)
	p := NewPresigner(testConfig(),
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "abc" }),
	)

	var gotBucket, gotKey string
	var gotExpiry time.Duration
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = aws.ToString(in.Bucket), aws.ToString(in.Key)
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		gotExpiry = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/upload"}, nil
	}

	up, err := p.PresignUpload(context.Background(), "u1")
	if err != nil {
		t.Fatalf("PresignUpload err: %v", err)
	}
	if up.VoiceKey != "voice/u1/2025/06/07/abc" {
		t.Errorf("VoiceKey = %q", up.VoiceKey)
	}
	if up.UploadURL != "https://signed.example/upload" {
		t.Errorf("UploadURL = %q", up.UploadURL)
	}
	if !up.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("ExpiresAt = %v", up.ExpiresAt)
	}
	if gotBucket != "phantom-voice" || gotKey != up.VoiceKey {
		t.Errorf("presigned %s/%s", gotBucket, gotKey)
	}
	if gotExpiry != 10*time.Minute {
		t.Errorf("presign expiry = %v", gotExpiry)
	}
}

func TestPresignClient_BuiltOnceWithOptions(t *testing.T) {
	stubAWS(t)

	var loads int
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		loads++
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatal("static credentials not applied")
		}
		return aws.Config{}, nil
	}

	var endpoint string
	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		endpoint = aws.ToString(opts.BaseEndpoint)
		pathStyle = opts.UsePathStyle
		return &s3.Client{}
	}

	p := NewPresigner(testConfig())
	for i := 0; i < 3; i++ {
		if _, err := p.PresignUpload(context.Background(), "u1"); err != nil {
			t.Fatalf("PresignUpload err: %v", err)
		}
	}
	if loads != 1 {
		t.Errorf("aws config loaded %d times, want 1", loads)
	}
	if endpoint != "http://127.0.0.1:9000" || !pathStyle {
		t.Errorf("endpoint = %q, path style = %v", endpoint, pathStyle)
	}
}

func TestPresignUpload_Errors(t *testing.T) {
	t.Run("no bucket", func(t *testing.T) {
		p := NewPresigner(config.VoiceConfig{})
		_, err := p.PresignUpload(context.Background(), "u1")
		if !apperr.IsNotConfigured(err) {
			t.Fatalf("expected NotConfiguredError, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		stubAWS(t)
		p := NewPresigner(testConfig())
		_, err := p.PresignUpload(context.Background(), "")
		if !apperr.IsValidation(err) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("config load failure", func(t *testing.T) {
		stubAWS(t)
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("load-fail")
		}
		p := NewPresigner(testConfig())
		_, err := p.PresignUpload(context.Background(), "u1")
		if err == nil || !strings.Contains(err.Error(), "load-fail") {
			t.Fatalf("expected load-fail, got %v", err)
		}
	})

	t.Run("presign failure", func(t *testing.T) {
		stubAWS(t)
		presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			return nil, errors.New("presign-put-fail")
		}
		p := NewPresigner(testConfig())
		_, err := p.PresignUpload(context.Background(), "u1")
		if err == nil || !strings.Contains(err.Error(), "presign-put-fail") {
			t.Fatalf("expected presign-put-fail, got %v", err)
		}
	})
}

func TestOwnedBy(t *testing.T) {
	tests := []struct {
		key, user string
		want      bool
	}{
		{"voice/u1/2025/06/07/abc", "u1", true},
		{"voice/u12/2025/06/07/abc", "u1", false},
		{"voice/u1/2025/06/07/abc", "u2", false},
		{"other/u1/abc", "u1", false},
		{"voice/u1/x", "", false},
	}
	for _, tt := range tests {
		if got := OwnedBy(tt.key, tt.user); got != tt.want {
			t.Errorf("OwnedBy(%q, %q) = %v, want %v", tt.key, tt.user, got, tt.want)
		}
	}
}
