package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(in.Key))
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectAPI) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(in.Key))
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			Bucket:    "test-bucket",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
		})
		require.NoError(t, err)
		require.NotNil(t, store.client)
		require.Equal(t, DefaultRegion, store.cfg.Region)
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			Bucket:    "test-bucket",
			AccessKey: "test-access-key",
			SecretKey: "test-secret-key",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{Bucket: "b"})
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, store)
	})
}

func TestS3Storage_Get(t *testing.T) {
	t.Parallel()

	api := &mockObjectAPI{}
	api.On("GetObject", mock.Anything, "invoices/a.pdf").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("pdf"))}, nil)
	api.On("GetObject", mock.Anything, "missing.pdf").
		Return(nil, &types.NoSuchKey{})

	s := NewWithClient(api, Config{Bucket: "b"})
	ctx := context.Background()

	rc, err := s.Get(ctx, "/invoices/a.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "pdf", string(data))

	_, err = s.Get(ctx, "missing.pdf")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = s.Get(ctx, "  ")
	require.ErrorIs(t, err, ErrInvalidKey)

	api.AssertExpectations(t)
}

func TestS3Storage_Head(t *testing.T) {
	t.Parallel()

	api := &mockObjectAPI{}
	api.On("HeadObject", mock.Anything, "a.pdf").Return(&s3.HeadObjectOutput{
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(42),
	}, nil)
	api.On("HeadObject", mock.Anything, "gone.pdf").Return(nil, &mockAPIError{code: "NotFound"})

	s := NewWithClient(api, Config{Bucket: "b"})

	info, err := s.Head(context.Background(), "a.pdf")
	require.NoError(t, err)
	require.Equal(t, &FileInfo{Key: "a.pdf", ContentType: "application/pdf", Size: 42}, info)

	_, err = s.Head(context.Background(), "gone.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	var input *s3.PutObjectInput
	api := &mockObjectAPI{}
	api.On("PutObject", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*s3.PutObjectInput) }).
		Return(&s3.PutObjectOutput{}, nil)

	s := NewWithClient(api, Config{Bucket: "mail", Prefix: "/attachments/"})

	info, err := s.Put(context.Background(), "/tmp/Q3 report.pdf", bytes.NewReader([]byte("%PDF")))
	require.NoError(t, err)

	parts := strings.Split(info.Key, "/")
	require.Len(t, parts, 3)
	require.Equal(t, "attachments", parts[0])
	require.Len(t, parts[1], 36)
	require.Equal(t, "Q3_report.pdf", parts[2])
	require.Equal(t, "application/pdf", info.ContentType)
	require.Equal(t, int64(4), info.Size)

	require.Equal(t, "mail", aws.ToString(input.Bucket))
	require.Equal(t, info.Key, aws.ToString(input.Key))
	require.Equal(t, int64(4), aws.ToInt64(input.ContentLength))
}

func TestS3Storage_Put_Errors(t *testing.T) {
	t.Parallel()

	api := &mockObjectAPI{}
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, &mockAPIError{code: "AccessDenied"})

	s := NewWithClient(api, Config{Bucket: "mail"})

	_, err := s.Put(context.Background(), "a.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = s.Put(context.Background(), "/", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"by extension", "a.pdf", nil, "application/pdf"},
		{"sniffed png", "image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"sniffed text", "notes", []byte("hello"), "text/plain; charset=utf-8"},
		{"empty", "blob", nil, MIMEOctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, DetectContentType(tt.file, tt.data))
		})
	}
}

func TestSanitizePathSegment(t *testing.T) {
	t.Parallel()

	require.Equal(t, "report.pdf", sanitizePathSegment("report.pdf"))
	require.Equal(t, "my_file_1_.txt", sanitizePathSegment("my file(1).txt"))
	require.Equal(t, "etcpasswd", sanitizePathSegment("..etc..passwd"))
}
