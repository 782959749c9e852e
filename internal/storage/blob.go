package storage

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

// NewAudioKey builds the blob key for an audio answer recording. Keys are
// namespaced per session and never reused.
func NewAudioKey(sessionID int64) string {
	return fmt.Sprintf("audio/%d/%s.webm", sessionID, uuid.NewString())
}
