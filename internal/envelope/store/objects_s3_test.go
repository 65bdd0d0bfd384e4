package store_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/envelope/store"
)

// fakeS3 mimics the conditional-write and not-found behaviour of a bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func statusError(code int) error {
	return &smithyhttp.ResponseError{Response: &smithyhttp.Response{Response: &http.Response{StatusCode: code}}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	key := aws.ToString(in.Key)
	if _, ok := f.objects[key]; ok && aws.ToString(in.IfNoneMatch) == "*" {
		return nil, statusError(http.StatusPreconditionFailed)
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, statusError(http.StatusNotFound)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Objects_PutGet(t *testing.T) {
	client := newFakeS3()
	objects, err := store.NewS3Objects(client, "railx-messages", "")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, objects.Put(ctx, "orders/a.bin", []byte("blob")))

	blob, err := objects.Get(ctx, "orders/a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), blob)

	put := client.puts[0]
	assert.Equal(t, "railx-messages", aws.ToString(put.Bucket))
	assert.Equal(t, "application/octet-stream", aws.ToString(put.ContentType))
	assert.Nil(t, put.SSECustomerKey)
}

func TestS3Objects_NeverOverwrites(t *testing.T) {
	objects, err := store.NewS3Objects(newFakeS3(), "railx-messages", "")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, objects.Put(ctx, "orders/a.bin", []byte("first")))

	err = objects.Put(ctx, "orders/a.bin", []byte("second"))
	require.True(t, apperr.IsKind(err, apperr.KindStorage))

	blob, err := objects.Get(ctx, "orders/a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), blob)
}

func TestS3Objects_MissingObject(t *testing.T) {
	objects, err := store.NewS3Objects(newFakeS3(), "railx-messages", "")
	require.NoError(t, err)

	_, err = objects.Get(context.Background(), "orders/none.bin")
	require.True(t, apperr.IsKind(err, apperr.KindStorage))
	assert.Equal(t, "envelope blob is missing", err.Error())
}

func TestS3Objects_SSECustomerKey(t *testing.T) {
	client := newFakeS3()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	objects, err := store.NewS3Objects(client, "railx-messages", key)
	require.NoError(t, err)
	require.NoError(t, objects.Put(context.Background(), "orders/a.bin", []byte("blob")))

	put := client.puts[0]
	assert.Equal(t, "AES256", aws.ToString(put.SSECustomerAlgorithm))
	assert.Equal(t, key, aws.ToString(put.SSECustomerKey))
	assert.NotEmpty(t, aws.ToString(put.SSECustomerKeyMD5))

	_, err = store.NewS3Objects(client, "railx-messages", base64.StdEncoding.EncodeToString([]byte("short")))
	require.Error(t, err)
}
