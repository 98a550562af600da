package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveBlobStore uploads recordings into a Google Drive folder tree rooted
// at a shared folder, one subfolder per blob path segment.
type DriveBlobStore struct {
	svc    *drive.Service
	rootID string

	mu      sync.Mutex
	folders map[string]string // blob dir -> drive folder id
}

func NewDriveBlobStore(ctx context.Context, credentialsFile, rootFolderID string) (*DriveBlobStore, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("NewDriveBlobStore(): failed to create drive client: %w", err)
	}
	return &DriveBlobStore{
		svc:     svc,
		rootID:  rootFolderID,
		folders: make(map[string]string),
	}, nil
}

func (b *DriveBlobStore) Upload(ctx context.Context, data []byte, path string) error {
	dir, name := splitBlobPath(path)

	parentID, err := b.ensureFolder(ctx, dir)
	if err != nil {
		return fmt.Errorf("Upload(): %w", err)
	}

	// Upload-if-absent: skip when the object is already there
	q := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), parentID)
	existing, err := b.svc.Files.List().Q(q).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Upload(): lookup %s: %w", path, err)
	}
	if len(existing.Files) > 0 {
		log.Printf("Upload(): %s already present, skipping", path)
		return nil
	}

	_, err = b.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).Media(bytes.NewReader(data)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Upload(): create %s: %w", path, err)
	}
	return nil
}

// ensureFolder walks the path segments under the root, reusing cached
// folder ids and creating missing folders. Safe to call on every upload.
func (b *DriveBlobStore) ensureFolder(ctx context.Context, dir string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dir == "" {
		return b.rootID, nil
	}
	if id, ok := b.folders[dir]; ok {
		return id, nil
	}

	parentID := b.rootID
	walked := ""
	for _, seg := range strings.Split(dir, "/") {
		if walked == "" {
			walked = seg
		} else {
			walked = walked + "/" + seg
		}
		if id, ok := b.folders[walked]; ok {
			parentID = id
			continue
		}

		q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
			escapeQuery(seg), parentID, folderMimeType)
		found, err := b.svc.Files.List().Q(q).Fields("files(id)").PageSize(1).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("ensureFolder(): lookup %s: %w", walked, err)
		}

		var id string
		if len(found.Files) > 0 {
			id = found.Files[0].Id
		} else {
			created, err := b.svc.Files.Create(&drive.File{
				Name:     seg,
				MimeType: folderMimeType,
				Parents:  []string{parentID},
			}).Fields("id").Context(ctx).Do()
			if err != nil {
				return "", fmt.Errorf("ensureFolder(): create %s: %w", walked, err)
			}
			id = created.Id
		}
		b.folders[walked] = id
		parentID = id
	}
	return parentID, nil
}

func splitBlobPath(path string) (dir, name string) {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
