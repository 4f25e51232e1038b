package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const (
	VersionField  = "_version"
	legacyVersion = 1
)

// Migration upgrades a document by exactly one schema version.
type Migration func(doc map[string]any) (map[string]any, error)

// Codec stamps documents with a schema version and upgrades older documents
// on decode. Migrations is keyed by the version a migration starts from.
// Documents without a version field are treated as version 1.
type Codec struct {
	Version    int
	Migrations map[int]Migration
}

func (c Codec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding versioned document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("versioned document must be an object: %w", err)
	}
	doc[VersionField] = c.Version
	return json.Marshal(doc)
}

// Decode upgrades data to the current version and decodes it into v. It
// reports whether a migration ran.
func (c Codec) Decode(data []byte, v any) (bool, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc == nil {
		return false, fmt.Errorf("%w: document is null", ErrMalformed)
	}

	version, err := documentVersion(doc)
	if err != nil {
		return false, err
	}
	if version > c.Version {
		return false, fmt.Errorf("%w: %d is newer than %d", ErrUnknownVersion, version, c.Version)
	}

	migrated := false
	for version < c.Version {
		migrate, ok := c.Migrations[version]
		if !ok {
			return false, fmt.Errorf("%w: no migration from version %d", ErrUnknownVersion, version)
		}
		doc, err = migrate(doc)
		if err != nil {
			return false, fmt.Errorf("migrating from version %d: %w", version, err)
		}
		version++
		migrated = true
	}
	doc[VersionField] = c.Version

	normalized, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("re-encoding migrated document: %w", err)
	}
	if err := json.Unmarshal(normalized, v); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return migrated, nil
}

// Load reads and decodes a versioned document. A missing key reports false
// with a nil error; malformed and unknown-version documents return an error
// and leave v untouched.
func (c Codec) Load(ctx context.Context, s Storage, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := c.Decode(data, v); err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	return true, nil
}

func (c Codec) Save(ctx context.Context, s Storage, key string, v any) error {
	data, err := c.Encode(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}

func documentVersion(doc map[string]any) (int, error) {
	raw, ok := doc[VersionField]
	if !ok || raw == nil {
		return legacyVersion, nil
	}
	n, ok := raw.(float64)
	if !ok || n != math.Trunc(n) || n < legacyVersion {
		return 0, fmt.Errorf("%w: %v", ErrUnknownVersion, raw)
	}
	return int(n), nil
}
