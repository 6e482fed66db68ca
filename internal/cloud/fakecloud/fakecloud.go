// Package fakecloud is an in-memory CloudService test double, in the
// teacher's pattern of interface + concrete adapter + in-memory store
// used across its _test.go files.
package fakecloud

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/CloneWith/storageengine/internal/classify"
	"github.com/CloneWith/storageengine/pkg/engine"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

type session struct {
	parts map[int][]byte
}

// Cloud is a deterministic, fully in-process CloudService, letting tests
// inject failures at specific points without a real network.
type Cloud struct {
	mu       sync.Mutex
	sessions map[string]*session
	objects  map[string][]byte

	// FailQuotaOnCreate, when set, makes CreateUpload return
	// classify.ErrQuotaExceeded instead of succeeding.
	FailQuotaOnCreate bool

	// FailOversizeOnCreate makes CreateUpload return classify.ErrObjectTooLarge.
	FailOversizeOnCreate bool

	// FailUploadPartOnce, when >0, fails exactly that many future
	// UploadPart calls with a transient error before succeeding.
	FailUploadPartOnce int

	// FailCompleteOnce, when true, fails the next CompleteUpload call once.
	FailCompleteOnce bool
}

// New creates an empty fake cloud.
func New() *Cloud {
	return &Cloud{
		sessions: make(map[string]*session),
		objects:  make(map[string][]byte),
	}
}

func (c *Cloud) CreateUpload(ctx context.Context, workspaceID, parentDir, fileID, contentType string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailQuotaOnCreate {
		return "", classify.ErrQuotaExceeded
	}
	if c.FailOversizeOnCreate {
		return "", classify.ErrObjectTooLarge
	}

	id := uuid.New().String()
	c.sessions[id] = &session{parts: make(map[int][]byte)}
	return id, nil
}

func (c *Cloud) UploadPart(ctx context.Context, workspaceID, parentDir, uploadID, fileID string, partNumber int, data []byte) (engine.UploadedPart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailUploadPartOnce > 0 {
		c.FailUploadPartOnce--
		return engine.UploadedPart{}, fmt.Errorf("fakecloud: simulated transient failure")
	}

	sess, ok := c.sessions[uploadID]
	if !ok {
		return engine.UploadedPart{}, uploadmodel.ErrUploadNotFound
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	sess.parts[partNumber] = buf

	return engine.UploadedPart{PartNum: partNumber, ETag: fmt.Sprintf("etag-%d", partNumber)}, nil
}

func (c *Cloud) CompleteUpload(ctx context.Context, workspaceID, parentDir, uploadID, fileID string, parts []uploadmodel.UploadFilePart) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailCompleteOnce {
		c.FailCompleteOnce = false
		return fmt.Errorf("fakecloud: simulated completion failure")
	}

	sess, ok := c.sessions[uploadID]
	if !ok {
		return uploadmodel.ErrUploadNotFound
	}

	ordered := make([]uploadmodel.UploadFilePart, len(parts))
	copy(ordered, parts)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].PartNum < ordered[j].PartNum })

	var assembled []byte
	for _, p := range ordered {
		assembled = append(assembled, sess.parts[p.PartNum]...)
	}

	url := c.GetObjectURLV1(workspaceID, parentDir, fileID)
	c.objects[url] = assembled
	delete(c.sessions, uploadID)

	return nil
}

func (c *Cloud) GetObject(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.objects[url]
	if !ok {
		return nil, fmt.Errorf("fakecloud: object not found: %s", url)
	}
	return data, nil
}

func (c *Cloud) DeleteObject(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.objects, url)
	return nil
}

func (c *Cloud) GetObjectURLV1(workspaceID, parentDir, fileID string) string {
	return fmt.Sprintf("fake://%s%s/%s", workspaceID, parentDir, fileID)
}

func (c *Cloud) ParseObjectURLV1(url string) (workspaceID, parentDir, fileID string, ok bool) {
	rest, found := strings.CutPrefix(url, "fake://")
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
		workspaceID = head
		parentDir = ""
	} else {
		workspaceID = head[:dirStart]
		parentDir = head[dirStart:]
	}

	return workspaceID, parentDir, fileID, true
}
