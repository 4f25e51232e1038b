package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"prompter/internal/config"
	"prompter/internal/parser"
	"prompter/internal/state"
	"prompter/internal/store"
)

// Store is the part of store.Store the importer writes through.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetScriptHashes(ctx context.Context, ownerID string) (map[string]string, error)
	UpsertImportedScript(ctx context.Context, in store.ScriptInput) error
	RemoveStaleScripts(ctx context.Context, ownerID string, currentSourceFiles []string) (int64, error)
}

type Result struct {
	ScriptsUpserted int
	ScriptsRemoved  int
	FilesSkipped    int
	Errors          []error
}

type Options struct {
	// Full re-imports files whose content hash is unchanged.
	Full bool
}

// Run imports the markdown scripts under cfg.Scripts.Paths for the configured
// owner. Files that fail to parse are reported in Result.Errors and do not
// stop the run. Imported scripts whose files disappeared are removed.
func Run(ctx context.Context, cfg *config.ProjectConfig, presets *config.Presets, db Store, options Options) (*Result, error) {
	owner := strings.TrimSpace(cfg.Scripts.Owner)
	if owner == "" {
		return nil, fmt.Errorf("scripts.owner is required for import")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var existingHashes map[string]string
	if !options.Full {
		var err error
		existingHashes, err = db.GetScriptHashes(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("get script hashes for %s: %w", owner, err)
		}
	}

	files, err := walkMarkdownFiles(cfg.Scripts.Paths, cfg.Scripts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking script files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		hash, err := computeHash(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("hashing %s: %w", path, err))
			continue
		}
		if !options.Full {
			if existing, ok := existingHashes[path]; ok && existing == hash {
				result.FilesSkipped++
				continue
			}
		}

		doc, err := parser.ParseFile(path)
		if errors.Is(err, parser.ErrMissingTitle) {
			result.FilesSkipped++
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		appearance, err := presetConfig(presets, doc.Preset)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("applying preset in %s: %w", path, err))
			continue
		}

		input := store.ScriptInput{
			OwnerID:       owner,
			Title:         doc.Title,
			Content:       doc.Body,
			BackgroundURL: doc.BackgroundURL,
			MusicURL:      doc.MusicURL,
			Tags:          doc.Tags,
			Config:        appearance,
			SourceFile:    path,
			SourceHash:    hash,
		}
		if err := db.UpsertImportedScript(ctx, input); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting %s: %w", path, err))
			continue
		}
		result.ScriptsUpserted++
	}

	removed, err := db.RemoveStaleScripts(ctx, owner, files)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("removing stale scripts for %s: %w", owner, err))
	} else {
		result.ScriptsRemoved = int(removed)
	}

	return result, nil
}

// presetConfig resolves a named preset into the saved appearance document.
// An empty name yields no document.
func presetConfig(presets *config.Presets, name string) (json.RawMessage, error) {
	if name == "" {
		return nil, nil
	}
	preset, ok := presets.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", state.ErrUnknownPreset, name)
	}
	cfg, err := state.PresetConfig(preset)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding preset %s: %w", name, err)
	}
	return data, nil
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
