package infra_s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/humanbelnik/singalong/core/internal/config"
	"github.com/humanbelnik/singalong/core/internal/model"
)

func MustEstabilishConn(cfg config.S3) *s3.Client {
	if cfg.Endpoint != "" {
		return createMockClient(cfg.Endpoint)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatal(err)
	}
	log.Println("[s3] using real client in region:", awsCfg.Region)
	return s3.NewFromConfig(awsCfg)
}

func createMockClient(endpoint string) *s3.Client {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("mock", "mock", "")),
		awsconfig.WithRegion("mock-region"),
	)
	if err != nil {
		log.Fatal("failed to create mock S3 config:", err)
	}

	log.Println("[s3] using mock client with endpoint:", endpoint)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
}

// Putter is the subset of *s3.Client the archive writes through.
type Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type bucketHeader interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// RecordingArchive stores every submitted take under <prefix>/<room>/<turn>-<participant>.<ext>.
type RecordingArchive struct {
	client Putter

	prefix     string
	bucketName string
}

func New(bucketName string, client *s3.Client, prefix string) (*RecordingArchive, error) {
	archive := NewWithPutter(bucketName, client, prefix)

	err := checkBucket(client, bucketName)
	return archive, err
}

func NewWithPutter(bucketName string, client Putter, prefix string) *RecordingArchive {
	return &RecordingArchive{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}
}

func checkBucket(client bucketHeader, bucketName string) error {
	_, err := client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err == nil {
		log.Printf("[s3] bucket %v exists and is accessible", bucketName)
		return nil
	}

	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		if _, ok := apiError.(*types.NotFound); ok {
			log.Printf("[s3] bucket %v is available", bucketName)
			return nil
		}
	}
	log.Printf("[s3] either bucket %v is not accessible or another error occurred: %v", bucketName, err)
	return err
}

func (s *RecordingArchive) buildKey(paths ...string) string {
	var cleaned []string
	for _, p := range paths {
		clean := strings.ReplaceAll(p, "\\", "")
		clean = strings.ReplaceAll(clean, "/", "")
		if clean != "" {
			cleaned = append(cleaned, clean)
		}
	}
	return path.Join(cleaned...)
}

func (s *RecordingArchive) Save(ctx context.Context, slot model.TurnSlot, rec model.Recording) (string, error) {
	name := strconv.Itoa(slot.Turn) + "-" + string(slot.Participant) + extension(rec.MIME)
	key := s.buildKey(s.prefix, string(slot.Room), name)

	contentType := rec.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucketName,
		Key:         &key,
		Body:        bytes.NewReader(rec.Audio),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	}); err != nil {
		return "", fmt.Errorf("failed to save recording to S3: %w", err)
	}
	return key, nil
}

func extension(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	switch strings.TrimSpace(base) {
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ".bin"
	}
}
