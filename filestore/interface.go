// Package filestore keeps submitted source text on disk while it is graded.
package filestore

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"errors"
)

const randIDLength = 12

var errUniqueIDNotGenerated = errors.New("Unique id does not exists after tried 50 times")

// FileStore defines interface to store submission files
type FileStore interface {
	Add(name string, content []byte) (id, path string, err error) // Add creates a file with name & content, returns id and the path on disk
	Remove(id string) bool                                        // Remove deletes a file by id
	Get(id string) (name, path string, ok bool)                   // Get file by id
	List() map[string]string                                      // List return all file ids to original name
}

func generateID() (string, error) {
	b := make([]byte, randIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := base32.NewEncoder(base32.StdEncoding.WithPadding(base32.NoPadding), &buf)
	if _, err := enc.Write(b); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
