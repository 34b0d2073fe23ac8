// Package source fetches the YAML documents the wallet shell is configured
// from: the settings overlay and the remote node list. Each Repository keeps
// the last document that parsed successfully, so a failed refresh never
// replaces good data.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned by Refresh when the fetched document has no
// content.
var ErrEmptyDocument = errors.New("empty document")

// Repository is a source of one YAML document.
type Repository interface {
	// GetName returns the name of the source, used in logs and URLs.
	GetName() string
	// GetData returns one top-level key of the last good document.
	GetData(key string) (config interface{}, isPresent bool)
	// GetRawData returns the last good document as fetched.
	GetRawData() []byte
	// Refresh fetches and parses the document again.
	Refresh(ctx context.Context) error
}

// document holds the last good content of a repository.
type document struct {
	sync.RWMutex
	data    map[string]interface{} // top-level keys, nil when the root is not a mapping
	rawData []byte
}

// GetData returns one top-level key of the last good document.
func (d *document) GetData(key string) (config interface{}, isPresent bool) {
	d.RLock()
	defer d.RUnlock()
	config, isPresent = d.data[key]
	return config, isPresent
}

// GetRawData returns a copy of the last good document as fetched.
func (d *document) GetRawData() []byte {
	d.RLock()
	defer d.RUnlock()
	return bytes.Clone(d.rawData)
}

// store parses raw and, only if that succeeds, replaces the current
// document. Documents whose root is a sequence or scalar are kept raw.
func (d *document) store(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyDocument
	}
	var root interface{}
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	data, _ := root.(map[string]interface{})

	d.Lock()
	d.data = data
	d.rawData = raw
	d.Unlock()
	return nil
}
