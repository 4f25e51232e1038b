package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"prompter/internal/store"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	client, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema (idempotent): %v", err)
	}
	return client
}

func TestScriptLifecycle(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	created, err := client.CreateScript(ctx, store.ScriptInput{
		OwnerID: "alice",
		Title:   "Morning show",
		Content: "Good morning and welcome.\n\nToday we talk about tides.",
		Tags:    []string{"news", "daily"},
		Config:  json.RawMessage(`{"typography":{"fontSize":48}}`),
	})
	if err != nil {
		t.Fatalf("create script: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", created)
	}

	got, err := client.GetScript(ctx, created.ID, "alice")
	if err != nil {
		t.Fatalf("get script: %v", err)
	}
	if got.Title != "Morning show" || len(got.Tags) != 2 {
		t.Fatalf("unexpected script: %+v", got)
	}
	if string(got.Config) != `{"typography":{"fontSize":48}}` {
		t.Fatalf("unexpected config: %s", got.Config)
	}

	if _, err := client.GetScript(ctx, created.ID, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for other owner, got %v", err)
	}
	if _, err := client.GetScript(ctx, created.ID, ""); err != nil {
		t.Fatalf("expected unscoped lookup to succeed, got %v", err)
	}

	updated, err := client.UpdateScript(ctx, created.ID, store.ScriptInput{OwnerID: "alice", Title: "Evening show", Content: "Good evening."})
	if err != nil {
		t.Fatalf("update script: %v", err)
	}
	if updated.Title != "Evening show" || len(updated.Tags) != 0 || updated.Config != nil {
		t.Fatalf("unexpected updated script: %+v", updated)
	}

	if _, err := client.UpdateScript(ctx, created.ID, store.ScriptInput{OwnerID: "bob", Title: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found updating other owner's script, got %v", err)
	}

	count, err := client.CountScripts(ctx, "alice")
	if err != nil || count != 1 {
		t.Fatalf("expected 1 script, got %d (%v)", count, err)
	}

	if err := client.DeleteScript(ctx, created.ID, "alice"); err != nil {
		t.Fatalf("delete script: %v", err)
	}
	if err := client.DeleteScript(ctx, created.ID, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListScripts(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	mustCreate(t, client, store.ScriptInput{OwnerID: "alice", Title: "A", Content: "12345", Tags: []string{"news"}})
	mustCreate(t, client, store.ScriptInput{OwnerID: "alice", Title: "B", Content: "1", Tags: []string{"vlog"}})
	mustCreate(t, client, store.ScriptInput{OwnerID: "bob", Title: "C"})

	all, err := client.ListScripts(ctx, "alice", "")
	if err != nil {
		t.Fatalf("list scripts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(all))
	}

	tagged, err := client.ListScripts(ctx, "alice", "news")
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(tagged) != 1 || tagged[0].Title != "A" || tagged[0].CharCount != 5 {
		t.Fatalf("unexpected tagged list: %+v", tagged)
	}

	everyone, err := client.ListScripts(ctx, "", "")
	if err != nil || len(everyone) != 3 {
		t.Fatalf("expected 3 scripts across owners, got %d (%v)", len(everyone), err)
	}
}

func TestSearchScripts(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	mustCreate(t, client, store.ScriptInput{OwnerID: "alice", Title: "Tides", Content: "The tides rise with the moon."})
	mustCreate(t, client, store.ScriptInput{OwnerID: "alice", Title: "Weather", Content: "Sunny with light wind."})
	mustCreate(t, client, store.ScriptInput{OwnerID: "bob", Title: "Moon", Content: "The moon landing."})

	results, err := client.SearchScripts(ctx, "alice", "moon")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Tides" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if _, err := client.SearchScripts(ctx, "alice", "  "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestImportedScripts(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	in := store.ScriptInput{OwnerID: "alice", Title: "Intro", Content: "v1", SourceFile: "scripts/intro.md", SourceHash: "h1"}
	if err := client.UpsertImportedScript(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	in.Content = "v2"
	in.SourceHash = "h2"
	if err := client.UpsertImportedScript(ctx, in); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if err := client.UpsertImportedScript(ctx, store.ScriptInput{OwnerID: "alice", Title: "Outro", SourceFile: "scripts/outro.md", SourceHash: "h3"}); err != nil {
		t.Fatalf("upsert outro: %v", err)
	}
	mustCreate(t, client, store.ScriptInput{OwnerID: "alice", Title: "Manual"})

	hashes, err := client.GetScriptHashes(ctx, "alice")
	if err != nil {
		t.Fatalf("hashes: %v", err)
	}
	if len(hashes) != 2 || hashes["scripts/intro.md"] != "h2" {
		t.Fatalf("unexpected hashes: %v", hashes)
	}

	removed, err := client.RemoveStaleScripts(ctx, "alice", []string{"scripts/intro.md"})
	if err != nil {
		t.Fatalf("remove stale: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	count, _ := client.CountScripts(ctx, "alice")
	if count != 2 {
		t.Fatalf("expected imported intro and manual script to remain, got %d", count)
	}

	if err := client.UpsertImportedScript(ctx, store.ScriptInput{OwnerID: "alice", Title: "x"}); err == nil {
		t.Fatalf("expected error without source file")
	}
}

func TestRecordings(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	script := mustCreate(t, client, store.ScriptInput{OwnerID: "alice", Title: "Take"})
	rec, err := client.CreateRecording(ctx, store.RecordingInput{OwnerID: "alice", ScriptID: script.ID, FileName: "take1.webm", MimeType: "video/webm", SizeBytes: 1024, DurationSeconds: 12.5})
	if err != nil {
		t.Fatalf("create recording: %v", err)
	}
	if _, err := client.CreateRecording(ctx, store.RecordingInput{OwnerID: "alice", FileName: "loose.webm"}); err != nil {
		t.Fatalf("create loose recording: %v", err)
	}

	forScript, err := client.ListRecordings(ctx, "alice", script.ID)
	if err != nil || len(forScript) != 1 || forScript[0].ID != rec.ID {
		t.Fatalf("unexpected recordings for script: %+v (%v)", forScript, err)
	}

	orphans, err := client.ListOrphanedRecordings(ctx)
	if err != nil || len(orphans) != 0 {
		t.Fatalf("expected no orphans, got %+v (%v)", orphans, err)
	}

	if err := client.DeleteScript(ctx, script.ID, "alice"); err != nil {
		t.Fatalf("delete script: %v", err)
	}
	orphans, err = client.ListOrphanedRecordings(ctx)
	if err != nil || len(orphans) != 1 || orphans[0].FileName != "take1.webm" {
		t.Fatalf("expected one orphan, got %+v (%v)", orphans, err)
	}

	if err := client.DeleteRecording(ctx, rec.ID, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for other owner, got %v", err)
	}
	if err := client.DeleteRecording(ctx, rec.ID, "alice"); err != nil {
		t.Fatalf("delete recording: %v", err)
	}
}

func TestState(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if _, err := client.GetState(ctx, "alice:teleprompter-content"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := client.PutState(ctx, "alice:teleprompter-content", []byte(`{"text":"a"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := client.PutState(ctx, "alice:teleprompter-content", []byte(`{"text":"b"}`)); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}
	value, err := client.GetState(ctx, "alice:teleprompter-content")
	if err != nil || string(value) != `{"text":"b"}` {
		t.Fatalf("unexpected state %s (%v)", value, err)
	}
	if err := client.DeleteState(ctx, "alice:teleprompter-content"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	ddl := "CREATE TABLE a (x INT);\n-- comment\nCREATE TRIGGER t AFTER INSERT ON a BEGIN\n  INSERT INTO b VALUES (1);\nEND;\nCREATE INDEX i ON a (x);\n"
	statements := splitStatements(ddl)
	if len(statements) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(statements), statements)
	}
}

func mustCreate(t *testing.T, client *Client, in store.ScriptInput) *store.Script {
	t.Helper()
	script, err := client.CreateScript(context.Background(), in)
	if err != nil {
		t.Fatalf("create script %q: %v", in.Title, err)
	}
	return script
}
