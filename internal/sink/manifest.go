package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"git.home.luguber.info/inful/pagebuilder/internal/routes"
)

// Manifest file names inside the output directory.
const (
	ManifestJSON = "routes.json"
	ManifestCBOR = "routes.cbor.zst"
)

// Route describes one published page.
type Route struct {
	Permalink   string   `json:"permalink" cbor:"permalink"`
	ID          string   `json:"id" cbor:"id"`
	Title       string   `json:"title" cbor:"title"`
	Source      string   `json:"source" cbor:"source"`
	Version     string   `json:"version" cbor:"version"`
	Sidebar     string   `json:"sidebar,omitempty" cbor:"sidebar,omitempty"`
	Layout      string   `json:"layout" cbor:"layout"`
	Fingerprint string   `json:"fingerprint,omitempty" cbor:"fingerprint,omitempty"`
	Components  []string `json:"components,omitempty" cbor:"components,omitempty"`
}

// Manifest lists the routes of a build.
type Manifest struct {
	BuildID string `json:"build_id" cbor:"build_id"`
	// GeneratedAt is unix seconds.
	GeneratedAt int64   `json:"generated_at" cbor:"generated_at"`
	Digest      string  `json:"digest" cbor:"digest"`
	Routes      []Route `json:"routes" cbor:"routes"`
}

// NewManifest describes reg in registry order.
func NewManifest(buildID string, reg *routes.Registry, at time.Time) *Manifest {
	m := &Manifest{BuildID: buildID, GeneratedAt: at.Unix(), Digest: reg.Digest(), Routes: make([]Route, 0, reg.Len())}
	for _, p := range reg.Pages() {
		meta := p.Metadata
		r := Route{
			Permalink:   meta.Permalink,
			ID:          meta.ID,
			Title:       meta.Title,
			Source:      meta.Source,
			Version:     meta.Version,
			Sidebar:     meta.Sidebar,
			Layout:      p.Layout,
			Fingerprint: p.Fingerprint,
		}
		if p.Body != nil && len(p.Body.Components) > 0 {
			r.Components = append([]string(nil), p.Body.Components...)
		}
		m.Routes = append(m.Routes, r)
	}
	return m
}

// WriteJSON writes the manifest as indented JSON.
func (m *Manifest) WriteJSON(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCBOR writes the zstd-compressed CBOR encoding of the manifest.
func (m *Manifest) WriteCBOR(path string) error {
	data, err := EncodeManifest(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadManifestCBOR reads a file written by WriteCBOR.
func ReadManifestCBOR(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeManifest(data)
}

var (
	encMode     cbor.EncMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sink: CBOR encoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("sink: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("sink: zstd decoder initialization failed: " + err.Error())
	}
}

// EncodeManifest encodes m as deterministic CBOR compressed with zstd.
// Equal manifests produce equal bytes.
func EncodeManifest(m *Manifest) ([]byte, error) {
	raw, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// DecodeManifest reverses EncodeManifest.
func DecodeManifest(data []byte) (*Manifest, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress manifest: %w", err)
	}
	var m Manifest
	if err := cbor.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
