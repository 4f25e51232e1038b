package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"prompter/internal/preview"
	"prompter/internal/store"
	"prompter/internal/story"
)

type SearchScriptsInput struct {
	Query string `json:"query" jsonschema:"search terms"`
}

type GetScriptInput struct {
	ID string `json:"id" jsonschema:"script id"`
}

type ListScriptsInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"tag filter"`
}

type MemoryBudgetInput struct {
	Devices int `json:"devices" jsonschema:"number of enabled preview devices"`
	Chars   int `json:"chars" jsonschema:"script length in characters"`
}

type CanEnableDeviceInput struct {
	Current int `json:"current" jsonschema:"devices enabled now"`
	Chars   int `json:"chars" jsonschema:"script length in characters"`
}

type ValidateStoryMessageInput struct {
	Message string `json:"message" jsonschema:"raw UPDATE_STORY message as JSON text"`
}

type EstimateScrollInput struct {
	Content        string  `json:"content" jsonschema:"script text"`
	ScrollTop      float64 `json:"scrollTop,omitempty" jsonschema:"scroll offset in pixels"`
	ViewportHeight float64 `json:"viewportHeight,omitempty" jsonschema:"viewport height in pixels"`
	ContainerWidth float64 `json:"containerWidth,omitempty" jsonschema:"container width in pixels"`
	FontSize       float64 `json:"fontSize,omitempty" jsonschema:"font size in pixels"`
	Overscan       *int    `json:"overscan,omitempty" jsonschema:"extra items rendered on each side"`
}

type ListPresetsInput struct{}

type ScriptSummaryOutput struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	CharCount int      `json:"char_count"`
}

type ScriptOutput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	BackgroundURL string   `json:"bg_url,omitempty"`
	MusicURL      string   `json:"music_url,omitempty"`
	Tags          []string `json:"tags"`
	SourceFile    string   `json:"source_file,omitempty"`
	CharCount     int      `json:"char_count"`
}

type SearchResultOutput struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
}

type SearchScriptsOutput struct {
	Results []SearchResultOutput `json:"results"`
}

type ListScriptsOutput struct {
	Scripts []ScriptSummaryOutput `json:"scripts"`
}

type MemoryBudgetOutput struct {
	UsageMB        float64 `json:"usage_mb"`
	Level          string  `json:"level"`
	Message        string  `json:"message"`
	Percentage     float64 `json:"percentage"`
	MaxDeviceCount int     `json:"max_device_count"`
}

type StoryMessageOutput struct {
	Valid            bool   `json:"valid"`
	Error            string `json:"error,omitempty"`
	SlideCount       int    `json:"slide_count"`
	ActiveSlideIndex int    `json:"active_slide_index"`
}

type PresetOutput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ScrollItemOutput struct {
	Index  int     `json:"index"`
	Text   string  `json:"text"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Lines  int     `json:"lines"`
}

type ScrollWindowOutput struct {
	Items       []ScrollItemOutput `json:"items"`
	StartIndex  int                `json:"start_index"`
	EndIndex    int                `json:"end_index"`
	OffsetY     float64            `json:"offset_y"`
	TotalHeight float64            `json:"total_height"`
}

type ListPresetsOutput struct {
	Presets []PresetOutput `json:"presets"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_scripts",
		Description: "Full-text search over titles, tags, and script text",
	}, s.handleSearchScripts)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_script",
		Description: "Retrieve a script and its text",
	}, s.handleGetScript)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_scripts",
		Description: "List scripts with an optional tag filter",
	}, s.handleListScripts)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "memory_budget",
		Description: "Estimate preview memory use for a device count and script length",
	}, s.handleMemoryBudget)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "can_enable_device",
		Description: "Check whether one more preview device fits the memory budget",
	}, s.handleCanEnableDevice)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_story_message",
		Description: "Validate an UPDATE_STORY preview message",
	}, s.handleValidateStoryMessage)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "estimate_scroll",
		Description: "Compute the visible paragraph window of a script at a scroll offset",
	}, s.handleEstimateScroll)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_presets",
		Description: "List the configured appearance presets",
	}, s.handleListPresets)
}

func (s *Server) handleSearchScripts(ctx context.Context, req *sdk.CallToolRequest, input SearchScriptsInput) (*sdk.CallToolResult, SearchScriptsOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchScriptsOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.db.SearchScripts(ctx, s.opts.Owner, input.Query)
	if err != nil {
		s.logger.Error("search scripts", zap.String("query", input.Query), zap.Error(err))
		return nil, SearchScriptsOutput{}, err
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, result := range results {
		output = append(output, SearchResultOutput{
			ID:      result.ID,
			Title:   result.Title,
			Tags:    append([]string{}, result.Tags...),
			Score:   result.Score,
			Snippet: result.Snippet,
		})
	}
	return nil, SearchScriptsOutput{Results: output}, nil
}

func (s *Server) handleGetScript(ctx context.Context, req *sdk.CallToolRequest, input GetScriptInput) (*sdk.CallToolResult, ScriptOutput, error) {
	if input.ID == "" {
		return nil, ScriptOutput{}, fmt.Errorf("id is required")
	}
	script, err := s.db.GetScript(ctx, input.ID, s.opts.Owner)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ScriptOutput{}, fmt.Errorf("script not found")
	}
	if err != nil {
		return nil, ScriptOutput{}, err
	}
	return nil, scriptOutputFromStore(script), nil
}

func (s *Server) handleListScripts(ctx context.Context, req *sdk.CallToolRequest, input ListScriptsInput) (*sdk.CallToolResult, ListScriptsOutput, error) {
	items, err := s.db.ListScripts(ctx, s.opts.Owner, input.Tag)
	if err != nil {
		return nil, ListScriptsOutput{}, err
	}

	output := make([]ScriptSummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, ScriptSummaryOutput{
			ID:        item.ID,
			Title:     item.Title,
			Tags:      append([]string{}, item.Tags...),
			CharCount: item.CharCount,
		})
	}
	return nil, ListScriptsOutput{Scripts: output}, nil
}

func (s *Server) handleMemoryBudget(ctx context.Context, req *sdk.CallToolRequest, input MemoryBudgetInput) (*sdk.CallToolResult, MemoryBudgetOutput, error) {
	if input.Devices < 0 || input.Chars < 0 {
		return nil, MemoryBudgetOutput{}, fmt.Errorf("devices and chars must not be negative")
	}
	usage := preview.CalculateMemoryUsage(input.Devices, input.Chars)
	status := preview.MemoryStatus(usage)
	return nil, MemoryBudgetOutput{
		UsageMB:        usage,
		Level:          string(status.Level),
		Message:        status.Message,
		Percentage:     status.Percentage,
		MaxDeviceCount: preview.MaxDeviceCount(input.Chars),
	}, nil
}

func (s *Server) handleCanEnableDevice(ctx context.Context, req *sdk.CallToolRequest, input CanEnableDeviceInput) (*sdk.CallToolResult, preview.DeviceCheck, error) {
	if input.Current < 0 || input.Chars < 0 {
		return nil, preview.DeviceCheck{}, fmt.Errorf("current and chars must not be negative")
	}
	return nil, preview.CanEnableDevice(input.Current, input.Chars), nil
}

// handleValidateStoryMessage reports invalid messages in its output rather
// than as a tool error.
func (s *Server) handleValidateStoryMessage(ctx context.Context, req *sdk.CallToolRequest, input ValidateStoryMessageInput) (*sdk.CallToolResult, StoryMessageOutput, error) {
	maxSlides := s.opts.MaxSlides
	if maxSlides <= 0 {
		maxSlides = story.MaxSlides
	}
	update, err := preview.ParseStoryMessage([]byte(input.Message), maxSlides)
	if err != nil {
		return nil, StoryMessageOutput{Error: err.Error()}, nil
	}
	return nil, StoryMessageOutput{
		Valid:            true,
		SlideCount:       len(update.Slides),
		ActiveSlideIndex: update.ActiveSlideIndex,
	}, nil
}

func (s *Server) handleEstimateScroll(ctx context.Context, req *sdk.CallToolRequest, input EstimateScrollInput) (*sdk.CallToolResult, ScrollWindowOutput, error) {
	cfg := preview.DefaultScrollConfig()
	if input.ViewportHeight > 0 {
		cfg.ViewportHeight = input.ViewportHeight
	}
	if input.ContainerWidth > 0 {
		cfg.ContainerWidth = input.ContainerWidth
	}
	if input.FontSize > 0 {
		cfg.FontSize = input.FontSize
	}
	if input.Overscan != nil {
		cfg.Overscan = max(*input.Overscan, 0)
	}
	items := preview.ParseContentToItems(input.Content)
	return nil, scrollWindowOutput(preview.CalculateVisibleItems(items, input.ScrollTop, cfg)), nil
}

func scrollWindowOutput(w preview.Window) ScrollWindowOutput {
	out := ScrollWindowOutput{
		Items:       make([]ScrollItemOutput, 0, len(w.Items)),
		StartIndex:  w.StartIndex,
		EndIndex:    w.EndIndex,
		OffsetY:     w.OffsetY,
		TotalHeight: w.TotalHeight,
	}
	for _, item := range w.Items {
		out.Items = append(out.Items, ScrollItemOutput{
			Index:  item.Index,
			Text:   item.Text,
			Top:    item.Top,
			Height: item.Height,
			Lines:  item.Lines,
		})
	}
	return out
}

func (s *Server) handleListPresets(ctx context.Context, req *sdk.CallToolRequest, input ListPresetsInput) (*sdk.CallToolResult, ListPresetsOutput, error) {
	output := ListPresetsOutput{Presets: []PresetOutput{}}
	if s.opts.Presets == nil {
		return nil, output, nil
	}
	for _, preset := range s.opts.Presets.Presets {
		output.Presets = append(output.Presets, PresetOutput{Name: preset.Name, Description: preset.Description})
	}
	return nil, output, nil
}

func scriptOutputFromStore(script *store.Script) ScriptOutput {
	if script == nil {
		return ScriptOutput{}
	}
	return ScriptOutput{
		ID:            script.ID,
		Title:         script.Title,
		Content:       script.Content,
		BackgroundURL: script.BackgroundURL,
		MusicURL:      script.MusicURL,
		Tags:          append([]string{}, script.Tags...),
		SourceFile:    script.SourceFile,
		CharCount:     len([]rune(script.Content)),
	}
}
