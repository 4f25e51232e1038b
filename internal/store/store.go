package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	CreateScript(ctx context.Context, in ScriptInput) (*Script, error)
	UpdateScript(ctx context.Context, id string, in ScriptInput) (*Script, error)
	GetScript(ctx context.Context, id, ownerID string) (*Script, error)
	ListScripts(ctx context.Context, ownerID, tag string) ([]ScriptSummary, error)
	DeleteScript(ctx context.Context, id, ownerID string) error
	CountScripts(ctx context.Context, ownerID string) (int, error)
	SearchScripts(ctx context.Context, ownerID, query string) ([]SearchResult, error)

	UpsertImportedScript(ctx context.Context, in ScriptInput) error
	GetScriptHashes(ctx context.Context, ownerID string) (map[string]string, error)
	RemoveStaleScripts(ctx context.Context, ownerID string, currentSourceFiles []string) (int64, error)

	CreateRecording(ctx context.Context, in RecordingInput) (*Recording, error)
	ListRecordings(ctx context.Context, ownerID, scriptID string) ([]Recording, error)
	DeleteRecording(ctx context.Context, id, ownerID string) error
	ListOrphanedRecordings(ctx context.Context) ([]Recording, error)

	GetState(ctx context.Context, key string) ([]byte, error)
	PutState(ctx context.Context, key string, value []byte) error
	DeleteState(ctx context.Context, key string) error
}
