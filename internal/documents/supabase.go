package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps documents in a public Supabase Storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseStore talks to the storage API of projectURL using the service key.
func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	if projectURL == "" || serviceKey == "" || bucket == "" {
		return nil, errors.New("documents: supabase url, key and bucket are required")
	}
	endpoint := strings.TrimRight(projectURL, "/") + "/storage/v1"
	client := storage_go.NewClient(endpoint, serviceKey, nil)
	return &SupabaseStore{client: client, bucket: bucket}, nil
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}

	upsert := false
	_, err = s.client.UploadFile(s.bucket, cleanKey, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("documents: supabase upload %s: %w", cleanKey, err)
	}

	return s.client.GetPublicUrl(s.bucket, cleanKey).SignedURL, nil
}
