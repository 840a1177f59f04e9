// Package dossier loads client dossier files: the bundled financial snapshot,
// knowledge-graph context, and scenario simulations a synthesis run consumes.
// Dossiers are JSON or YAML, one client per file.
package dossier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fintelops/synthex/internal/common"
	"github.com/fintelops/synthex/internal/model"
)

// Dossier bundles everything the engine needs for one client.
type Dossier struct {
	Financial model.FinancialData        `json:"financial_data" yaml:"financial_data"`
	Graph     model.KnowledgeGraphContext `json:"knowledge_graph_context" yaml:"knowledge_graph_context"`
	Scenarios []model.ScenarioSimulation `json:"scenario_simulations" yaml:"scenario_simulations"`
}

// Load reads a dossier from a JSON or YAML file, chosen by extension.
func Load(path string) (*Dossier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrDossierNotFound, path)
		}
		return nil, fmt.Errorf("failed to read dossier %s: %w", path, err)
	}

	var d Dossier
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrDossierInvalid, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrDossierInvalid, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", common.ErrDossierInvalid, path, ext)
	}

	if d.Financial.ClientID == "" {
		return nil, fmt.Errorf("%w: %s: missing client_id", common.ErrDossierInvalid, path)
	}

	return &d, nil
}

// LoadDir loads every dossier in a directory, sorted by file name so batch
// runs process clients in a stable order. Non-dossier files are skipped.
func LoadDir(dir string) ([]*Dossier, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dossier directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	dossiers := make([]*Dossier, 0, len(names))
	for _, name := range names {
		d, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		dossiers = append(dossiers, d)
	}

	if len(dossiers) == 0 {
		return nil, fmt.Errorf("%w: no dossiers in %s", common.ErrDossierNotFound, dir)
	}

	return dossiers, nil
}
