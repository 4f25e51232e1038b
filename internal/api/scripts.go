package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"prompter/internal/state"
	"prompter/internal/store"
)

type scriptRequest struct {
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	BackgroundURL string          `json:"bgUrl"`
	MusicURL      string          `json:"musicUrl"`
	Tags          []string        `json:"tags"`
	Config        json.RawMessage `json:"config"`
}

// input validates the request and turns it into a store input for owner.
func (r scriptRequest) input(owner string) (store.ScriptInput, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return store.ScriptInput{}, validationError("title is required")
	}
	cfg, err := normalizeScriptConfig(r.Config)
	if err != nil {
		return store.ScriptInput{}, err
	}
	tags := make([]string, 0, len(r.Tags))
	for _, tag := range r.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return store.ScriptInput{
		OwnerID:       owner,
		Title:         title,
		Content:       r.Content,
		BackgroundURL: strings.TrimSpace(r.BackgroundURL),
		MusicURL:      strings.TrimSpace(r.MusicURL),
		Tags:          tags,
		Config:        cfg,
	}, nil
}

// normalizeScriptConfig checks that a saved appearance document is a complete
// config and returns its canonical encoding.
func normalizeScriptConfig(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	cfg, err := decodeConfig(raw)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding script config: %w", err)
	}
	return out, nil
}

// decodeConfig parses a complete appearance config. Unknown fields, missing
// fields and null values are rejected.
func decodeConfig(raw []byte) (state.ConfigState, error) {
	var cfg state.ConfigState
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return state.ConfigState{}, validationError(fmt.Sprintf("config is invalid: %v", err))
	}
	canonical, err := json.Marshal(cfg)
	if err != nil {
		return state.ConfigState{}, fmt.Errorf("encoding config: %w", err)
	}
	if field := missingField(canonical, raw, ""); field != "" {
		return state.ConfigState{}, validationError(fmt.Sprintf("config is missing %s", field))
	}
	return cfg, nil
}

// missingField returns the first field path of want that got lacks or sets to
// null, or "" when got has every field.
func missingField(want, got json.RawMessage, prefix string) string {
	var wantFields map[string]json.RawMessage
	if err := json.Unmarshal(want, &wantFields); err != nil {
		return ""
	}
	var gotFields map[string]json.RawMessage
	_ = json.Unmarshal(got, &gotFields)

	keys := make([]string, 0, len(wantFields))
	for key := range wantFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		value, ok := gotFields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return path
		}
		if field := missingField(wantFields[key], value, path); field != "" {
			return field
		}
	}
	return ""
}

func (s *Server) listScripts(c *gin.Context) {
	scripts, err := s.db.ListScripts(c.Request.Context(), currentUser(c), c.Query("tag"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, scripts)
}

func (s *Server) searchScripts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		s.writeError(c, validationError("q is required"))
		return
	}
	results, err := s.db.SearchScripts(c.Request.Context(), currentUser(c), query)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, results)
}

func (s *Server) getScript(c *gin.Context) {
	script, err := s.db.GetScript(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, script)
}

func (s *Server) createScript(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("invalid request body"))
		return
	}
	user := currentUser(c)
	in, err := req.input(user)
	if err != nil {
		s.writeError(c, err)
		return
	}

	count, err := s.db.CountScripts(c.Request.Context(), user)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if limit := s.cfg.Limits.MaxScripts; limit > 0 && count >= limit {
		s.writeError(c, &Error{Code: CodeQuotaExceeded, Message: fmt.Sprintf("script limit of %d reached", limit)})
		return
	}

	script, err := s.db.CreateScript(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	created(c, script)
}

func (s *Server) updateScript(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, validationError("invalid request body"))
		return
	}
	in, err := req.input(currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	script, err := s.db.UpdateScript(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, script)
}

func (s *Server) deleteScript(c *gin.Context) {
	if err := s.db.DeleteScript(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		s.writeError(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id")})
}

// loadScript copies a saved script into the caller's teleprompter: text and
// media replace the content, and a saved appearance replaces the config.
func (s *Server) loadScript(c *gin.Context) {
	ctx := c.Request.Context()
	script, err := s.db.GetScript(ctx, c.Param("id"), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	ws := s.workspace(c)
	if len(script.Config) > 0 {
		var cfg state.ConfigState
		if err := json.Unmarshal(script.Config, &cfg); err != nil {
			s.writeError(c, fmt.Errorf("decoding config of script %s: %w", script.ID, err))
			return
		}
		ws.Config.SetAll(ctx, cfg)
	}
	content := ws.Content.SetAll(ctx, state.ContentPatch{
		Text:          &script.Content,
		BackgroundURL: &script.BackgroundURL,
		MusicURL:      &script.MusicURL,
	})
	ws.Playback.Reset()

	ok(c, gin.H{"content": content, "config": ws.Config.Snapshot()})
}
