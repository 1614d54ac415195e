package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/catalog"
	"github.com/lox/bingocards/internal/fileutil"
)

// Manifest records everything needed to audit or replay a run.
type Manifest struct {
	RunID       string         `yaml:"run_id"`
	Seed        int64          `yaml:"seed"`
	Input       string         `yaml:"input"`
	GeneratedAt time.Time      `yaml:"generated_at"`
	Cards       []ManifestCard `yaml:"cards"`
}

// ManifestCard is one participant's entry in a Manifest.
type ManifestCard struct {
	Participant string         `yaml:"participant"`
	Attempts    int            `yaml:"attempts"`
	Image       string         `yaml:"image,omitempty"`
	Items       []catalog.Item `yaml:"items"`
}

// NewManifest describes set. images, when given, holds each participant's image
// path in set order.
func NewManifest(set *cardgen.CardSet, seed int64, input string, now time.Time, images []string) (*Manifest, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating run id: %w", err)
	}
	m := &Manifest{
		RunID:       id.String(),
		Seed:        seed,
		Input:       input,
		GeneratedAt: now.UTC(),
	}
	i := 0
	err = set.Each(func(participant string, card cardgen.Card) error {
		mc := ManifestCard{
			Participant: participant,
			Attempts:    set.Attempts(participant),
			Items:       card,
		}
		if i < len(images) {
			mc.Image = filepath.Base(images[i])
		}
		m.Cards = append(m.Cards, mc)
		i++
		return nil
	})
	return m, err
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m *Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}
