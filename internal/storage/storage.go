package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Attachments stores message attachments in a GCS bucket and resolves stored
// keys to short-lived signed URLs. Messages persist only the key. A nil
// *Attachments is valid: uploads fail, URL resolution returns "".
type Attachments struct {
	client *storage.Client
	bucket string
}

func NewAttachments(ctx context.Context, bucket string) (*Attachments, error) {
	if bucket == "" {
		return nil, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Attachments{client: client, bucket: bucket}, nil
}

// Upload writes the body under a fresh uuid key and returns the key.
func (a *Attachments) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {
	if a == nil {
		return "", fmt.Errorf("attachment storage not configured")
	}
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	key := fmt.Sprintf("attachments/%s%s", uuid.NewString(), ext)

	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return key, nil
}

// ResolveURL turns a stored key into a 15-minute signed URL. Resolution
// failures degrade to "" so a storage outage never breaks message reads.
func (a *Attachments) ResolveURL(key string) string {
	if a == nil || key == "" {
		return ""
	}
	url, err := a.client.Bucket(a.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(15 * time.Minute),
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage: signed url failed")
		return ""
	}
	return url
}
