package prompts

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

const engineFilename = "orc_prompt_engine.json"

// AgentConfig is one stage's entry in the external prompt engine file. Only
// the fields relevant to a given stage are populated.
type AgentConfig struct {
	Role            string          `json:"role"`
	Instruction     string          `json:"instruction"`
	OutputSchema    json.RawMessage `json:"output_schema,omitempty"`
	FieldsToExtract json.RawMessage `json:"fields_to_extract,omitempty"`
	Logic           string          `json:"logic,omitempty"`
	Checks          json.RawMessage `json:"checks,omitempty"`
}

// Engine is the parsed external prompt configuration. A nil Engine is valid:
// every stage falls back to its hardcoded defaults.
type Engine struct {
	Agents map[string]AgentConfig `json:"agents"`
}

// Agent returns the config for a stage key (GATEKEEPER/ANALYST/GUARDIAN),
// or nil when the engine is absent or lacks that key.
func (e *Engine) Agent(key string) *AgentConfig {
	if e == nil {
		return nil
	}
	cfg, ok := e.Agents[key]
	if !ok {
		return nil
	}
	return &cfg
}

func candidatePaths() []string {
	return []string{
		filepath.Join("..", engineFilename),
		engineFilename,
		filepath.Join("data", engineFilename),
	}
}

// Load tries the candidate locations in order and parses the first file that
// exists. Absence or a parse failure is a warning, never fatal.
func Load() *Engine {
	return LoadFromPaths(candidatePaths()...)
}

func LoadFromPaths(paths ...string) *Engine {
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var engine Engine
		if err := json.Unmarshal(raw, &engine); err != nil {
			slog.Warn("prompt_engine_parse_failed", "path", p, "error", err)
			return nil
		}
		slog.Info("prompt_engine_loaded", "path", p)
		return &engine
	}
	slog.Warn("prompt_engine_not_found", "fallback", "built-in defaults")
	return nil
}
