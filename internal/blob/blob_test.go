package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"1.png", "2024/05/7.png", "a-b_c.png"}
	invalid := []string{"", "/etc/passwd", "../1.png", "a/../../b", "a//b", "./1.png", "a\\b", "dir/", "a\x00b"}

	for _, key := range valid {
		assert.NoError(t, ValidateKey(key), key)
	}
	for _, key := range invalid {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}

func TestFSRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "uploads")

	store, err := NewFS(root)
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))

	require.NoError(t, store.Put(ctx, "7.png", strings.NewReader("\x89PNG-bytes"), "image/png"))

	rc, err := store.Get(ctx, "7.png")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG-bytes", string(body))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestFSOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "1.png", strings.NewReader("old"), ""))
	require.NoError(t, store.Put(ctx, "1.png", strings.NewReader("new"), ""))

	rc, err := store.Get(ctx, "1.png")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "new", string(body))
}

func TestFSErrors(t *testing.T) {
	ctx := context.Background()
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "../outside.png")
	assert.ErrorIs(t, err, ErrInvalidKey)

	assert.ErrorIs(t, store.Put(ctx, "../outside.png", strings.NewReader("x"), ""), ErrInvalidKey)

	_, err = NewFS("")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3aws.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3aws.GetObjectInput, _ ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3aws.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3aws.HeadBucketInput, ...func(*s3aws.Options)) (*s3aws.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3aws.HeadBucketOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()

	store, err := NewS3(ctx, S3Config{Bucket: "shots", Prefix: "uploads/"}, WithS3Client(fake))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "3.png", bytes.NewReader([]byte("png")), "image/png"))
	assert.Equal(t, []byte("png"), fake.objects["shots/uploads/3.png"])
	assert.Equal(t, "image/png", fake.types["shots/uploads/3.png"])

	rc, err := store.Get(ctx, "3.png")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(body))

	_, err = store.Get(ctx, "4.png")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Ping(ctx))
}

func TestS3ErrorClassification(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.headErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}

	store, err := NewS3(ctx, S3Config{Bucket: "shots"}, WithS3Client(fake))
	require.NoError(t, err)

	err = store.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
	assert.False(t, errors.Is(err, ErrNotFound))

	notFound := classifyS3Error(&smithy.GenericAPIError{Code: "NotFound"}, "get", "9.png")
	assert.ErrorIs(t, notFound, ErrNotFound)

	_, err = NewS3(ctx, S3Config{})
	assert.Error(t, err)
}
