package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var sseAlgorithm = "AES256"

// S3 is a Store backed by an S3 bucket. Ids have the form
// s3://region/bucket/prefix/name.
type S3 struct {
	client s3iface.S3API
	region string
	bucket string
	prefix string
}

// NewS3FromRegion opens a session with the default credential chain
func NewS3FromRegion(region, bucket, prefix string) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("storage: aws session: %w", err)
	}
	return NewS3(s3.New(sess), region, bucket, prefix), nil
}

// NewS3 returns a Store that uses client
func NewS3(client s3iface.S3API, region, bucket, prefix string) *S3 {
	// prefix always starts and ends with /
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &S3{client: client, region: region, bucket: bucket, prefix: prefix}
}

func (s *S3) idFromName(name string) string {
	return fmt.Sprintf("s3://%s/%s%s%s", s.region, s.bucket, s.prefix, name)
}

func (s *S3) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.prefix + name
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: aws.String(sseAlgorithm),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return s.idFromName(name), nil
}

func (s *S3) Get(ctx context.Context, id string) ([]byte, string, error) {
	bucket, key, err := parseS3URI(id)
	if err != nil {
		return nil, "", err
	}
	obj, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, "", ErrNoObject
	} else if err != nil {
		return nil, "", fmt.Errorf("storage: get %s: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, "", err
	}
	return data, aws.StringValue(obj.ContentType), nil
}

func (s *S3) Delete(ctx context.Context, id string) error {
	bucket, key, err := parseS3URI(id)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

func parseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("storage: not an s3 id %q", uri)
	}
	p := strings.SplitN(u.Path, "/", 3)
	if len(p) < 3 {
		return "", "", fmt.Errorf("storage: bad S3 path %s", u.Path)
	}
	return p[1], "/" + p[2], nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if rf, ok := err.(awserr.RequestFailure); ok && rf.StatusCode() == http.StatusNotFound {
		return true
	}
	if ae, ok := err.(awserr.Error); ok && ae.Code() == s3.ErrCodeNoSuchKey {
		return true
	}
	return false
}
