package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the serialized form of a Plan handed to the render stage.
type Manifest struct {
	RunID     string           `yaml:"run_id"`
	Timestamp time.Time        `yaml:"timestamp"`
	Posts     int              `yaml:"posts"`
	Tags      int              `yaml:"tags"`
	Pages     []PageToGenerate `yaml:"pages"`
	Copies    []ContentToCopy  `yaml:"copies"`
}

// Snapshot captures the current contents of p.
func (p *Plan) Snapshot(runID string, posts, tags int, now time.Time) *Manifest {
	return &Manifest{
		RunID:     runID,
		Timestamp: now.UTC(),
		Posts:     posts,
		Tags:      tags,
		Pages:     p.Pages(),
		Copies:    p.Copies(),
	}
}

// ToYAML serializes the manifest.
func (m *Manifest) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromYAML deserializes a manifest.
func FromYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash identifies the pages and copy jobs, ignoring run identity and time,
// so two runs over the same content hash equally.
func (m *Manifest) Hash() (string, error) {
	hashInput := struct {
		Pages  []PageToGenerate `yaml:"pages"`
		Copies []ContentToCopy  `yaml:"copies"`
	}{m.Pages, m.Copies}

	data, err := yaml.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal manifest for hash: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteFile writes the manifest to path through a temporary file in the same
// directory, so readers never observe a partial manifest.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.ToYAML()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".plan-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
