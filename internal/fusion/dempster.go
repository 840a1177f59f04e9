package fusion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fintelops/synthex/internal/model"
)

// hypothesisSeparator joins scenario ids into a canonical hypothesis key.
// Scenario ids must not contain it; input validation enforces this.
const hypothesisSeparator = "|"

// massFunction assigns belief mass to hypothesis sets, keyed by their
// canonical form (sorted member ids joined by hypothesisSeparator). The key
// for the full frame represents total ignorance.
type massFunction map[string]float64

// hypothesisKey returns the canonical key for a set of scenario ids.
func hypothesisKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, hypothesisSeparator)
}

// hypothesisMembers splits a canonical key back into its member ids.
func hypothesisMembers(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, hypothesisSeparator)
}

// intersectHypotheses returns the canonical key of the intersection of two
// hypotheses, or "" when the intersection is empty. Both inputs are canonical
// (sorted), so a linear merge suffices.
func intersectHypotheses(a, b string) string {
	am := hypothesisMembers(a)
	bm := hypothesisMembers(b)

	var common []string
	i, j := 0, 0
	for i < len(am) && j < len(bm) {
		switch {
		case am[i] == bm[j]:
			common = append(common, am[i])
			i++
			j++
		case am[i] < bm[j]:
			i++
		default:
			j++
		}
	}
	return strings.Join(common, hypothesisSeparator)
}

// sortedHypotheses returns the mass function's keys in sorted order, so every
// float accumulation happens in a fixed order and results are reproducible
// bit for bit.
func sortedHypotheses(m massFunction) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvidenceSource is one independent body of evidence: a mass function over
// hypothesis sets plus a reliability factor used for discounting.
type EvidenceSource struct {
	Name        string
	Mass        massFunction
	Reliability float64
}

// validate checks that the mass assignments form a valid basic probability
// assignment: non-negative and summing to 1.
func (e EvidenceSource) validate() error {
	total := 0.0
	for _, key := range sortedHypotheses(e.Mass) {
		v := e.Mass[key]
		if v < 0 {
			return fmt.Errorf("evidence source %q: negative mass %.6f on %q", e.Name, v, key)
		}
		total += v
	}
	if math.Abs(total-1.0) > 1e-6 {
		return fmt.Errorf("evidence source %q: mass sums to %.6f, must be 1.0", e.Name, total)
	}
	return nil
}

// discount transfers mass toward ignorance in proportion to the source's
// unreliability: m'(A) = r*m(A) for A != Theta, m'(Theta) = 1 - r*(1 - m(Theta)).
func (e EvidenceSource) discount(frameKey string) massFunction {
	if e.Reliability >= 1.0 {
		out := make(massFunction, len(e.Mass))
		for k, v := range e.Mass {
			out[k] = v
		}
		return out
	}

	out := make(massFunction, len(e.Mass)+1)
	frameMass := 0.0
	for _, key := range sortedHypotheses(e.Mass) {
		if key == frameKey {
			frameMass = e.Mass[key]
			continue
		}
		out[key] = e.Reliability * e.Mass[key]
	}
	out[frameKey] = 1.0 - e.Reliability*(1.0-frameMass)
	return out
}

// combineMasses applies Dempster's rule of combination:
//
//	m12(A) = (1/(1-K)) * sum{m1(B)*m2(C) : B n C = A}
//
// where K is the mass of all conflicting (empty-intersection) pairs. A total
// contradiction (K == 1) is a *FusionConflictError; step is reported in it.
func combineMasses(m1, m2 massFunction, step int) (massFunction, float64, error) {
	combined := make(massFunction)
	conflict := 0.0

	for _, k1 := range sortedHypotheses(m1) {
		for _, k2 := range sortedHypotheses(m2) {
			product := m1[k1] * m2[k2]
			if product == 0 {
				continue
			}
			intersection := intersectHypotheses(k1, k2)
			if intersection == "" {
				conflict += product
				continue
			}
			combined[intersection] += product
		}
	}

	if conflict >= 1.0-1e-10 {
		return nil, conflict, &FusionConflictError{Conflict: conflict, Step: step}
	}

	norm := 1.0 / (1.0 - conflict)
	for _, key := range sortedHypotheses(combined) {
		combined[key] *= norm
	}
	return combined, conflict, nil
}

// beliefIn returns Bel({id}): the mass committed exactly to the singleton,
// since a singleton's only non-empty subset is itself.
func beliefIn(mass massFunction, id string) float64 {
	return mass[id]
}

// plausibilityOf returns Pl({id}): the total mass of every hypothesis whose
// set contains id.
func plausibilityOf(mass massFunction, id string) float64 {
	pl := 0.0
	for _, key := range sortedHypotheses(mass) {
		for _, member := range hypothesisMembers(key) {
			if member == id {
				pl += mass[key]
				break
			}
		}
	}
	return pl
}

// pignisticTransform spreads each hypothesis's mass evenly over its members,
// yielding a point probability distribution for decision diagnostics.
func pignisticTransform(mass massFunction, ids []string) map[string]float64 {
	betP := make(map[string]float64, len(ids))
	for _, id := range ids {
		betP[id] = 0.0
	}

	for _, key := range sortedHypotheses(mass) {
		members := hypothesisMembers(key)
		if len(members) == 0 {
			continue
		}
		share := mass[key] / float64(len(members))
		for _, member := range members {
			if _, ok := betP[member]; ok {
				betP[member] += share
			}
		}
	}

	total := 0.0
	for _, id := range ids {
		total += betP[id]
	}
	if total > 0 {
		for _, id := range ids {
			betP[id] /= total
		}
	}
	return betP
}

// DempsterShaferStrategy fuses independent evidence sources with Dempster's
// rule and recommends the scenario with the highest belief.
type DempsterShaferStrategy struct{}

// NewDempsterShaferStrategy builds the DST strategy.
func NewDempsterShaferStrategy() *DempsterShaferStrategy { return &DempsterShaferStrategy{} }

// Name implements Strategy.
func (s *DempsterShaferStrategy) Name() model.StrategyName { return model.StrategyDempsterShafer }

// Run implements Strategy. The evidence sources are combined in a fixed
// order: invoices, production, budget, knowledge graph, simulations.
func (s *DempsterShaferStrategy) Run(in Input) (model.StrategyResult, error) {
	ids := scenarioIDs(in.Scenarios)
	frameKey := hypothesisKey(ids)
	riskID := riskiestScenario(in.Scenarios)
	safeID := safestScenario(in.Scenarios)

	sources := []EvidenceSource{
		invoiceEvidence(ids, in.Financial.UnpaidInvoicesSpike, riskID, safeID),
		productionEvidence(ids, in.Financial.ProductionOutputChange, riskID, safeID),
		budgetEvidence(ids, in.Financial.BudgetRemainingQ3, riskID, safeID),
		graphEvidence(ids, in.Graph, riskID, safeID),
		simulationEvidence(ids, simulationScores(in.Scenarios)),
	}

	var combined massFunction
	lastConflict := 0.0
	maxConflict := 0.0

	for i, source := range sources {
		if err := source.validate(); err != nil {
			return model.StrategyResult{}, err
		}
		discounted := source.discount(frameKey)
		if i == 0 {
			combined = discounted
			continue
		}

		next, conflict, err := combineMasses(combined, discounted, i)
		if err != nil {
			return model.StrategyResult{}, err
		}
		combined = next
		lastConflict = conflict
		if conflict > maxConflict {
			maxConflict = conflict
		}
	}

	belief := make(map[string]float64, len(ids))
	plausibility := make(map[string]float64, len(ids))
	for _, id := range ids {
		belief[id] = beliefIn(combined, id)
		plausibility[id] = plausibilityOf(combined, id)
	}

	recommended := ids[0]
	for _, id := range ids[1:] {
		if belief[id] > belief[recommended] ||
			(belief[id] == belief[recommended] && id < recommended) {
			recommended = id
		}
	}

	pignistic := pignisticTransform(combined, ids)

	return model.StrategyResult{
		Strategy:            model.StrategyDempsterShafer,
		RecommendedScenario: recommended,
		Confidence:          dstConfidence(pignistic, ids, lastConflict),
		ScenarioScores:      normalizeScores(belief, ids),
		DST: &model.DSTDiagnostics{
			Conflict:              lastConflict,
			MaxConflict:           maxConflict,
			Belief:                belief,
			Plausibility:          plausibility,
			Pignistic:             pignistic,
			BeliefPlausibilityGap: plausibility[recommended] - belief[recommended],
		},
	}, nil
}

// dstConfidence is the pignistic margin of victory, damped by the residual
// conflict between sources.
func dstConfidence(pignistic map[string]float64, ids []string, conflict float64) float64 {
	if len(ids) == 1 {
		return pignistic[ids[0]] * (1.0 - conflict*0.5)
	}

	probs := make([]float64, 0, len(ids))
	for _, id := range ids {
		probs = append(probs, pignistic[id])
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(probs)))

	return (probs[0] - probs[1]) * (1.0 - conflict*0.5)
}
