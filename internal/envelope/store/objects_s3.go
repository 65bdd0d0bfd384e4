package store

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
)

// S3API is the subset of *s3.Client used here.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Objects stores blobs in a bucket. Objects are created with
// If-None-Match: * so an existing object is never replaced. When an SSE-C key
// is configured, objects are additionally encrypted at rest by the bucket.
type S3Objects struct {
	client S3API
	bucket string
	sseKey string
	sseMD5 string
}

// NewS3Objects returns a bucket-backed object store. sseCustomerKey is the
// base64 encoded 256-bit SSE-C key, or empty to disable SSE-C.
func NewS3Objects(client S3API, bucket, sseCustomerKey string) (*S3Objects, error) {
	o := &S3Objects{client: client, bucket: bucket}
	if sseCustomerKey == "" {
		return o, nil
	}

	keyRaw, err := base64.StdEncoding.DecodeString(sseCustomerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode SSE-C key: %w", err)
	}
	if len(keyRaw) != 32 {
		return nil, fmt.Errorf("SSE-C key must be 32 bytes, got %d", len(keyRaw))
	}
	sum := md5.Sum(keyRaw)
	o.sseKey = sseCustomerKey
	o.sseMD5 = base64.StdEncoding.EncodeToString(sum[:])
	return o, nil
}

func (o *S3Objects) Put(ctx context.Context, location string, blob []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(o.bucket),
		Key:           aws.String(location),
		Body:          bytes.NewReader(blob),
		ContentLength: aws.Int64(int64(len(blob))),
		ContentType:   aws.String(constant.BLOB_MIME),
		IfNoneMatch:   aws.String("*"),
	}
	if o.sseKey != "" {
		input.SSECustomerAlgorithm = aws.String("AES256")
		input.SSECustomerKey = aws.String(o.sseKey)
		input.SSECustomerKeyMD5 = aws.String(o.sseMD5)
	}

	if _, err := o.client.PutObject(ctx, input); err != nil {
		if httpStatus(err) == http.StatusPreconditionFailed {
			return apperr.Storage(err, "envelope blob location already in use")
		}
		return apperr.Storage(err, "failed to upload envelope blob")
	}
	return nil
}

func (o *S3Objects) Get(ctx context.Context, location string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(location),
	}
	if o.sseKey != "" {
		input.SSECustomerAlgorithm = aws.String("AES256")
		input.SSECustomerKey = aws.String(o.sseKey)
		input.SSECustomerKeyMD5 = aws.String(o.sseMD5)
	}

	obj, err := o.client.GetObject(ctx, input)
	if err != nil {
		if httpStatus(err) == http.StatusNotFound {
			return nil, apperr.Storage(err, "envelope blob is missing")
		}
		return nil, apperr.Storage(err, "failed to download envelope blob")
	}
	defer obj.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(obj.Body); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperr.Storage(err, "failed to read envelope blob")
	}
	return buf.Bytes(), nil
}

func httpStatus(err error) int {
	var re *smithyhttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
