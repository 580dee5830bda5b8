package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockObjectAPI) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.HeadObjectOutput{}, args.Error(0)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func keyIs(name string) interface{} {
	return mock.MatchedBy(func(in interface{}) bool {
		switch v := in.(type) {
		case *s3.PutObjectInput:
			return aws.ToString(v.Key) == name && aws.ToString(v.Bucket) == "docs"
		case *s3.GetObjectInput:
			return aws.ToString(v.Key) == name && aws.ToString(v.Bucket) == "docs"
		case *s3.HeadObjectInput:
			return aws.ToString(v.Key) == name && aws.ToString(v.Bucket) == "docs"
		case *s3.DeleteObjectInput:
			return aws.ToString(v.Key) == name && aws.ToString(v.Bucket) == "docs"
		}
		return false
	})
}

func TestS3_Put(t *testing.T) {
	api := new(mockObjectAPI)
	api.On("PutObject", mock.Anything, keyIs("1_ab_scan.pdf")).Return(nil)

	store := newS3WithClient(api, "docs")
	require.NoError(t, store.Put(context.Background(), "1_ab_scan.pdf", strings.NewReader("pdf"), 3))

	api.AssertExpectations(t)
}

func TestS3_Get(t *testing.T) {
	api := new(mockObjectAPI)
	api.On("GetObject", mock.Anything, keyIs("found.pdf")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString("content"))}, nil)
	api.On("GetObject", mock.Anything, keyIs("missing.pdf")).Return(nil, &types.NoSuchKey{})
	api.On("GetObject", mock.Anything, keyIs("broken.pdf")).Return(nil, errors.New("connection reset"))

	store := newS3WithClient(api, "docs")
	ctx := context.Background()

	rc, err := store.Get(ctx, "found.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "content", string(body))

	_, err = store.Get(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "broken.pdf")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestS3_Exists(t *testing.T) {
	api := new(mockObjectAPI)
	api.On("HeadObject", mock.Anything, keyIs("here.pdf")).Return(nil)
	api.On("HeadObject", mock.Anything, keyIs("gone.pdf")).Return(&types.NotFound{})

	store := newS3WithClient(api, "docs")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "here.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "gone.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3_RejectsTraversal(t *testing.T) {
	store := newS3WithClient(new(mockObjectAPI), "docs")

	assert.ErrorIs(t, store.Delete(context.Background(), "../etc/passwd"), ErrInvalidName)
}
