package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ArtifactKeyOpts are the options that change an artifact's bytes. Layout
// is a fingerprint of the layout options; Version is the program version,
// so a new release invalidates old entries.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Theme   string  `json:"theme,omitempty"`
	Engine  string  `json:"engine,omitempty"`
	RootID  string  `json:"root_id,omitempty"`
	Title   string  `json:"title,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Layout  string  `json:"layout,omitempty"`
	Version string  `json:"version,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for one rendered artifact of the schema
	// whose content hash is schemaHash.
	ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "artifact:<format>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	parts, _ := json.Marshal([]any{schemaHash, opts})
	return "artifact:" + opts.Format + ":" + Hash(parts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
