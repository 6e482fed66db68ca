// Package s3cloud is the reference CloudService implementation against
// AWS S3, adapting the teacher's pkg/store/content/s3 multipart
// operations to the engine's per-call signatures: the object key is
// composed from (workspace_id, parent_dir, file_id), matching
// get_object_url_v1 / parse_object_url_v1 from the original Rust source.
package s3cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/CloneWith/storageengine/internal/telemetry"
	"github.com/CloneWith/storageengine/pkg/engine"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

// Metrics is the subset of pkg/metrics the store reports against, kept as
// an interface (per the teacher's S3Metrics indirection) so nil disables
// it with zero overhead.
type Metrics interface {
	ObserveOperation(operation string, ok bool)
	RecordActiveUpload(delta int)
	RecordBytes(operation string, n int64)
}

// Store is a CloudService implementation backed by a single S3 bucket.
type Store struct {
	client *s3.Client
	bucket string

	metrics Metrics

	mu       sync.Mutex
	sessions map[string]*multipartUpload
}

type multipartUpload struct {
	mu             sync.Mutex
	completedParts []types.CompletedPart
}

// New wraps an already-configured S3 client for the given bucket.
func New(client *s3.Client, bucket string, metrics Metrics) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		metrics:  metrics,
		sessions: make(map[string]*multipartUpload),
	}
}

var _ engine.CloudService = (*Store)(nil)

func (s *Store) objectKey(workspaceID, parentDir, fileID string) string {
	parentDir = strings.Trim(parentDir, "/")
	if parentDir == "" {
		return fmt.Sprintf("%s/%s", workspaceID, fileID)
	}
	return fmt.Sprintf("%s/%s/%s", workspaceID, parentDir, fileID)
}

func (s *Store) CreateUpload(ctx context.Context, workspaceID, parentDir, fileID, contentType string) (string, error) {
	ctx, span := telemetry.StartUploadSpan(ctx, telemetry.SpanInitiate, workspaceID, parentDir, fileID)
	defer span.End()

	key := s.objectKey(workspaceID, parentDir, fileID)

	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := s.client.CreateMultipartUpload(ctx, input)
	s.observe("CreateMultipartUpload", err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return "", fmt.Errorf("s3cloud: create multipart upload: %w", err)
	}

	uploadID := aws.ToString(result.UploadId)

	s.mu.Lock()
	s.sessions[uploadID] = &multipartUpload{}
	s.mu.Unlock()

	s.recordActiveUpload(1)

	return uploadID, nil
}

func (s *Store) UploadPart(ctx context.Context, workspaceID, parentDir, uploadID, fileID string, partNumber int, data []byte) (engine.UploadedPart, error) {
	ctx, span := telemetry.StartUploadSpan(ctx, telemetry.SpanUploadPart, workspaceID, parentDir, fileID,
		telemetry.UploadID(uploadID), telemetry.PartNumber(partNumber), telemetry.Bytes(len(data)))
	defer span.End()

	key := s.objectKey(workspaceID, parentDir, fileID)

	result, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(int32(partNumber)),
		Body:       bytes.NewReader(data),
	})
	s.observe("UploadPart", err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return engine.UploadedPart{}, fmt.Errorf("s3cloud: upload part %d: %w", partNumber, err)
	}
	s.recordBytes("UploadPart", int64(len(data)))

	s.mu.Lock()
	session, ok := s.sessions[uploadID]
	s.mu.Unlock()
	if !ok {
		return engine.UploadedPart{}, uploadmodel.ErrUploadNotFound
	}

	eTag := aws.ToString(result.ETag)

	session.mu.Lock()
	session.completedParts = append(session.completedParts, types.CompletedPart{
		ETag:       aws.String(eTag),
		PartNumber: aws.Int32(int32(partNumber)),
	})
	session.mu.Unlock()

	return engine.UploadedPart{PartNum: partNumber, ETag: eTag}, nil
}

func (s *Store) CompleteUpload(ctx context.Context, workspaceID, parentDir, uploadID, fileID string, parts []uploadmodel.UploadFilePart) error {
	ctx, span := telemetry.StartUploadSpan(ctx, telemetry.SpanCompleteUpload, workspaceID, parentDir, fileID, telemetry.UploadID(uploadID))
	defer span.End()

	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(int32(p.PartNum)),
		})
	}
	sort.Slice(completed, func(i, j int) bool {
		return aws.ToInt32(completed[i].PartNumber) < aws.ToInt32(completed[j].PartNumber)
	})

	key := s.objectKey(workspaceID, parentDir, fileID)

	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	s.observe("CompleteMultipartUpload", err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("s3cloud: complete multipart upload: %w", err)
	}

	s.mu.Lock()
	delete(s.sessions, uploadID)
	s.mu.Unlock()

	s.recordActiveUpload(-1)

	return nil
}

func (s *Store) GetObject(ctx context.Context, url string) ([]byte, error) {
	workspaceID, parentDir, fileID, ok := s.ParseObjectURLV1(url)
	if !ok {
		return nil, fmt.Errorf("s3cloud: malformed object url: %s", url)
	}

	key := s.objectKey(workspaceID, parentDir, fileID)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.observe("GetObject", err)
	if err != nil {
		return nil, fmt.Errorf("s3cloud: get object: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("s3cloud: read object body: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Store) DeleteObject(ctx context.Context, url string) error {
	workspaceID, parentDir, fileID, ok := s.ParseObjectURLV1(url)
	if !ok {
		return fmt.Errorf("s3cloud: malformed object url: %s", url)
	}

	key := s.objectKey(workspaceID, parentDir, fileID)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.observe("DeleteObject", err)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil
		}
		return fmt.Errorf("s3cloud: delete object: %w", err)
	}
	return nil
}

func (s *Store) GetObjectURLV1(workspaceID, parentDir, fileID string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.objectKey(workspaceID, parentDir, fileID))
}

func (s *Store) ParseObjectURLV1(url string) (workspaceID, parentDir, fileID string, ok bool) {
	prefix := fmt.Sprintf("s3://%s/", s.bucket)
	rest, found := strings.CutPrefix(url, prefix)
	if !found {
		return "", "", "", false
	}

	slash := strings.LastIndex(rest, "/")
	if slash < 0 {
		return "", "", "", false
	}

	fileID = rest[slash+1:]
	head := rest[:slash]

	dirStart := strings.Index(head, "/")
	if dirStart < 0 {
		return head, "", fileID, true
	}
	return head[:dirStart], head[dirStart:], fileID, true
}

func (s *Store) observe(operation string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, err == nil)
	}
}

func (s *Store) recordBytes(operation string, n int64) {
	if s.metrics != nil {
		s.metrics.RecordBytes(operation, n)
	}
}

func (s *Store) recordActiveUpload(delta int) {
	if s.metrics != nil {
		s.metrics.RecordActiveUpload(delta)
	}
}
