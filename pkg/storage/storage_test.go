package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	stores := map[string]Store{
		"local":  local,
		"memory": NewMemoryStore(),
		"s3":     NewS3(newFakeS3(), "ap-south-1", "forms", "images"),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			data := []byte("\x89PNG fake image")

			id, err := store.Put(ctx, "2026/form-1.png", data, "image/png")
			require.NoError(t, err)
			require.NotEmpty(t, id)

			got, contentType, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, data, got)
			assert.Equal(t, "image/png", contentType)

			require.NoError(t, store.Delete(ctx, id))
			_, _, err = store.Get(ctx, id)
			assert.ErrorIs(t, err, ErrNoObject)
		})
	}
}

func TestS3IDFormat(t *testing.T) {
	store := NewS3(newFakeS3(), "ap-south-1", "forms", "images")
	id, err := store.Put(context.Background(), "a.png", []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "s3://ap-south-1/forms/images/a.png", id)

	bucket, key, err := parseS3URI(id)
	require.NoError(t, err)
	assert.Equal(t, "forms", bucket)
	assert.Equal(t, "/images/a.png", key)

	_, _, err = parseS3URI("mem://a.png")
	assert.Error(t, err)
}

func TestLocalStoreRejectsEscapingIDs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../outside.png", []byte("x"), "image/png")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(Options{Driver: "local", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(Options{Driver: "s3"})
	assert.Error(t, err)

	_, err = New(Options{Driver: "ftp"})
	assert.Error(t, err)
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string]fakeObject
}

type fakeObject struct {
	data        []byte
	contentType string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+*in.Key] = fakeObject{data: data, contentType: aws.StringValue(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[*in.Bucket+*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "not found", nil)
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: aws.String(obj.contentType),
	}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Bucket+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}
