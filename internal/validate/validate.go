package validate

import (
	"context"
	"fmt"
	"strings"

	"prompter/internal/preview"
	"prompter/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeEmptyScript       = "empty_script"
	codePreviewOverLimit  = "preview_over_limit"
	codePreviewHighMemory = "preview_memory_high"
	codeDuplicateTitle    = "duplicate_title"
	codeOrphanedRecording = "orphaned_recording"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Owner    string   `json:"owner,omitempty"`
	Script   string   `json:"script,omitempty"`
	ID       string   `json:"id,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Checker is the read side of store.Store the report needs.
type Checker interface {
	ListScripts(ctx context.Context, ownerID, tag string) ([]store.ScriptSummary, error)
	ListOrphanedRecordings(ctx context.Context) ([]store.Recording, error)
}

type Options struct {
	// PreviewDevices is the device count every script is checked against.
	PreviewDevices int
}

// Run checks every stored script against the preview memory budget and looks
// for leftovers such as recordings whose script was deleted.
func Run(ctx context.Context, db Checker, options Options) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}
	devices := max(options.PreviewDevices, 1)

	scripts, err := db.ListScripts(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}

	issues := make([]Issue, 0)
	for _, script := range scripts {
		issues = append(issues, checkScript(script, devices)...)
	}
	issues = append(issues, duplicateTitles(scripts)...)

	orphans, err := db.ListOrphanedRecordings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orphaned recordings: %w", err)
	}
	for _, rec := range orphans {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeOrphanedRecording,
			Message:  fmt.Sprintf("recording %s points at a deleted script", rec.FileName),
			Owner:    rec.OwnerID,
			ID:       rec.ID,
		})
	}

	return &Report{Issues: issues}, nil
}

func checkScript(script store.ScriptSummary, devices int) []Issue {
	if script.CharCount == 0 {
		return []Issue{scriptIssue(script, SeverityWarn, codeEmptyScript, "script has no content")}
	}

	usage := preview.CalculateMemoryUsage(devices, script.CharCount)
	switch {
	case preview.IsAtHardLimit(usage):
		msg := fmt.Sprintf("%d preview devices would use about %.0f MB; at most %d fit", devices, usage, preview.MaxDeviceCount(script.CharCount))
		return []Issue{scriptIssue(script, SeverityError, codePreviewOverLimit, msg)}
	case preview.IsAtWarningThreshold(usage):
		msg := fmt.Sprintf("%d preview devices would use about %.0f MB", devices, usage)
		return []Issue{scriptIssue(script, SeverityWarn, codePreviewHighMemory, msg)}
	}
	return nil
}

func duplicateTitles(scripts []store.ScriptSummary) []Issue {
	seen := make(map[string]int)
	for _, script := range scripts {
		seen[script.OwnerID+"\x00"+strings.ToLower(strings.TrimSpace(script.Title))]++
	}

	var issues []Issue
	reported := make(map[string]bool)
	for _, script := range scripts {
		key := script.OwnerID + "\x00" + strings.ToLower(strings.TrimSpace(script.Title))
		if seen[key] < 2 || reported[key] {
			continue
		}
		reported[key] = true
		msg := fmt.Sprintf("%d scripts share this title", seen[key])
		issues = append(issues, scriptIssue(script, SeverityWarn, codeDuplicateTitle, msg))
	}
	return issues
}

func scriptIssue(script store.ScriptSummary, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Owner:    script.OwnerID,
		Script:   script.Title,
		ID:       script.ID,
	}
}
