package dossier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintelops/synthex/internal/common"
)

const jsonDossier = `{
  "financial_data": {
    "client_id": "client-123",
    "unpaid_invoices_spike": 15.0,
    "production_output_change": -12.0,
    "budget_remaining_q3": 5.0
  },
  "knowledge_graph_context": {
    "client_parent_status": "restructuring",
    "similar_historical_pattern": {"years_ago": 2, "delay_days": 30}
  },
  "scenario_simulations": [
    {"scenario_id": "A", "description": "Trigger early payment incentive", "cash_flow_impact": -20.0, "margin_impact": 0.0, "probability": 0.85, "time_horizon_days": 60},
    {"scenario_id": "B", "description": "Initiate payment term renegotiation", "cash_flow_impact": 0.0, "margin_impact": -5.0, "probability": 0.9, "time_horizon_days": 30}
  ]
}`

const yamlDossier = `financial_data:
  client_id: client-456
  unpaid_invoices_spike: 3.0
  production_output_change: 1.0
  budget_remaining_q3: 70.0
knowledge_graph_context:
  client_parent_status: stable
scenario_simulations:
  - scenario_id: BAU
    description: Business as usual
    cash_flow_impact: -1.0
    margin_impact: 0.0
    probability: 0.95
    time_horizon_days: 30
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "client.json", jsonDossier)

	d, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "client-123", d.Financial.ClientID)
	assert.InDelta(t, 15.0, d.Financial.UnpaidInvoicesSpike, 1e-9)
	assert.Equal(t, "restructuring", d.Graph.ClientParentStatus)
	require.NotNil(t, d.Graph.SimilarHistoricalPattern)
	assert.Equal(t, 2, d.Graph.SimilarHistoricalPattern.YearsAgo)
	require.Len(t, d.Scenarios, 2)
	assert.Equal(t, "A", d.Scenarios[0].ScenarioID)
	assert.Equal(t, 60, d.Scenarios[0].TimeHorizonDays)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "client.yaml", yamlDossier)

	d, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "client-456", d.Financial.ClientID)
	assert.Nil(t, d.Graph.SimilarHistoricalPattern)
	require.Len(t, d.Scenarios, 1)
	assert.Equal(t, "BAU", d.Scenarios[0].ScenarioID)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		assert.ErrorIs(t, err, common.ErrDossierNotFound)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", "{not json")
		_, err := Load(path)
		assert.ErrorIs(t, err, common.ErrDossierInvalid)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "client.toml", "client_id = 1")
		_, err := Load(path)
		assert.ErrorIs(t, err, common.ErrDossierInvalid)
	})

	t.Run("missing client id", func(t *testing.T) {
		path := writeFile(t, dir, "anon.json", `{"financial_data": {}}`)
		_, err := Load(path)
		assert.ErrorIs(t, err, common.ErrDossierInvalid)
	})
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", yamlDossier)
	writeFile(t, dir, "a.json", jsonDossier)
	writeFile(t, dir, "notes.txt", "ignored")

	dossiers, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, dossiers, 2)

	// File-name order keeps batch runs stable.
	assert.Equal(t, "client-123", dossiers[0].Financial.ClientID)
	assert.Equal(t, "client-456", dossiers[1].Financial.ClientID)
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.ErrorIs(t, err, common.ErrDossierNotFound)
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", jsonDossier)
	writeFile(t, dir, "b.yaml", yamlDossier)

	dossiers, err := LoadDir(dir)
	require.NoError(t, err)

	store, err := NewStore(dossiers)
	require.NoError(t, err)

	ctx := context.Background()

	assert.Equal(t, []string{"client-123", "client-456"}, store.ClientIDs())

	financial, err := store.GetFinancialData(ctx, "client-123")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, financial.BudgetRemainingQ3, 1e-9)

	graph, err := store.GetContext(ctx, "client-456")
	require.NoError(t, err)
	assert.Equal(t, "stable", graph.ClientParentStatus)

	scenarios, err := store.Simulate(ctx, "client-123")
	require.NoError(t, err)
	assert.Len(t, scenarios, 2)

	_, err = store.GetFinancialData(ctx, "client-999")
	assert.ErrorIs(t, err, common.ErrDossierNotFound)
}

func TestNewStore_DuplicateClient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", jsonDossier)
	writeFile(t, dir, "copy.json", jsonDossier)

	dossiers, err := LoadDir(dir)
	require.NoError(t, err)

	_, err = NewStore(dossiers)
	assert.ErrorIs(t, err, common.ErrDossierInvalid)
}
