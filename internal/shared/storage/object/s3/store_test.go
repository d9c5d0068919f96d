package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "uploads/doc/file.pdf", want: "uploads/doc/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "uploads/file.pdf", want: "root/sub/uploads/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, applyPrefix(tt.prefix, tt.key))
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestSaveAndOpenRoundTripThroughClient(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "docs-bucket", "/archive/", "")

	n, err := store.Save(context.Background(), "uploads/doc-1/report.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "docs-bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "archive/uploads/doc-1/report.pdf", aws.ToString(put.Key))
	assert.Equal(t, "application/pdf", aws.ToString(put.ContentType))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, put.ServerSideEncryption)

	rc, err := store.Open(context.Background(), "uploads/doc-1/report.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestSaveUsesKMSWhenConfigured(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "docs-bucket", "", "kms-key-1")

	_, err := store.Save(context.Background(), "a.txt", "", strings.NewReader("x"))
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, s3types.ServerSideEncryptionAwsKms, fake.puts[0].ServerSideEncryption)
	assert.Equal(t, "kms-key-1", aws.ToString(fake.puts[0].SSEKMSKeyId))
	assert.Nil(t, fake.puts[0].ContentType)
}

func TestSaveWrapsClientError(t *testing.T) {
	boom := errors.New("access denied")
	store := NewWithClient(&fakeS3{putErr: boom}, "docs-bucket", "", "")

	_, err := store.Save(context.Background(), "a.txt", "text/plain", strings.NewReader("x"))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bucket=docs-bucket")
}
