package dossier

import (
	"context"
	"fmt"
	"sort"

	"github.com/fintelops/synthex/internal/common"
	"github.com/fintelops/synthex/internal/model"
	"github.com/fintelops/synthex/internal/service"
)

var (
	_ service.DataSource        = (*Store)(nil)
	_ service.GraphIntelligence = (*Store)(nil)
	_ service.ScenarioSimulator = (*Store)(nil)
)

// Store serves loaded dossiers by client id. It implements the DataSource,
// GraphIntelligence, and ScenarioSimulator service contracts, which lets the
// engine's callers treat file-backed input like any live upstream.
type Store struct {
	byClient map[string]*Dossier
}

// NewStore indexes dossiers by client id. Duplicate client ids are rejected.
func NewStore(dossiers []*Dossier) (*Store, error) {
	byClient := make(map[string]*Dossier, len(dossiers))
	for _, d := range dossiers {
		id := d.Financial.ClientID
		if _, dup := byClient[id]; dup {
			return nil, fmt.Errorf("%w: duplicate client_id %q", common.ErrDossierInvalid, id)
		}
		byClient[id] = d
	}
	return &Store{byClient: byClient}, nil
}

// ClientIDs returns every known client id in sorted order.
func (s *Store) ClientIDs() []string {
	ids := make([]string, 0, len(s.byClient))
	for id := range s.byClient {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) get(clientID string) (*Dossier, error) {
	d, ok := s.byClient[clientID]
	if !ok {
		return nil, fmt.Errorf("%w: client %q", common.ErrDossierNotFound, clientID)
	}
	return d, nil
}

// GetFinancialData returns the client's financial snapshot.
func (s *Store) GetFinancialData(_ context.Context, clientID string) (*model.FinancialData, error) {
	d, err := s.get(clientID)
	if err != nil {
		return nil, err
	}
	financial := d.Financial
	return &financial, nil
}

// GetContext returns the client's knowledge-graph context.
func (s *Store) GetContext(_ context.Context, clientID string) (*model.KnowledgeGraphContext, error) {
	d, err := s.get(clientID)
	if err != nil {
		return nil, err
	}
	graph := d.Graph
	return &graph, nil
}

// Simulate returns the client's scenario simulations.
func (s *Store) Simulate(_ context.Context, clientID string) ([]model.ScenarioSimulation, error) {
	d, err := s.get(clientID)
	if err != nil {
		return nil, err
	}
	scenarios := make([]model.ScenarioSimulation, len(d.Scenarios))
	copy(scenarios, d.Scenarios)
	return scenarios, nil
}
