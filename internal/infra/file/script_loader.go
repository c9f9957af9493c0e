package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gift-experience-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// ScriptLoader reads scripts from YAML files named <scriptID>.yaml in a directory.
type ScriptLoader struct {
	dir string
}

func NewScriptLoader(dir string) *ScriptLoader {
	return &ScriptLoader{dir: dir}
}

func (l *ScriptLoader) LoadScript(_ context.Context, scriptID string) (domain.Script, error) {
	if scriptID == "" || filepath.Base(scriptID) != scriptID {
		return domain.Script{}, domain.ErrScriptNotFound
	}
	script, err := ReadScript(filepath.Join(l.dir, scriptID+".yaml"))
	if err != nil {
		return domain.Script{}, err
	}
	if script.ID == "" {
		script.ID = scriptID
	}
	return script, nil
}

// ReadScript parses a single YAML script file.
func ReadScript(path string) (domain.Script, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Script{}, domain.ErrScriptNotFound
	}
	if err != nil {
		return domain.Script{}, fmt.Errorf("read script: %w", err)
	}
	var script domain.Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return domain.Script{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	return script, nil
}
