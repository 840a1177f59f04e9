package fusion

import (
	"fmt"
	"math"

	"github.com/fintelops/synthex/internal/model"
)

// BayesianEvidence is one observation for sequential Bayesian updating: a
// likelihood P(evidence|scenario) per scenario, plus a weight in (0,1] that
// tempers the likelihood (L^w) to reflect source reliability.
type BayesianEvidence struct {
	Name        string
	Likelihoods map[string]float64
	Weight      float64
}

// validate checks every likelihood lies in [0,1].
func (e BayesianEvidence) validate(ids []string) error {
	for _, id := range ids {
		l, ok := e.Likelihoods[id]
		if !ok {
			continue
		}
		if l < 0 || l > 1 {
			return fmt.Errorf("evidence %q: likelihood for %q is %.6f, must be in [0, 1]", e.Name, id, l)
		}
	}
	return nil
}

// BayesianStrategy starts from a uniform prior over scenarios and updates it
// with each evidence source in a fixed order, recommending the scenario with
// the highest posterior.
type BayesianStrategy struct{}

// NewBayesianStrategy builds the Bayesian strategy.
func NewBayesianStrategy() *BayesianStrategy { return &BayesianStrategy{} }

// Name implements Strategy.
func (s *BayesianStrategy) Name() model.StrategyName { return model.StrategyBayesian }

// Run implements Strategy. Evidence order is fixed and deterministic:
// invoices, production, budget, knowledge graph, scenario priors.
func (s *BayesianStrategy) Run(in Input) (model.StrategyResult, error) {
	ids := scenarioIDs(in.Scenarios)
	riskID := riskiestScenario(in.Scenarios)
	safeID := safestScenario(in.Scenarios)

	evidence := []BayesianEvidence{
		invoiceLikelihood(ids, in.Financial.UnpaidInvoicesSpike, riskID, safeID),
		productionLikelihood(ids, in.Financial.ProductionOutputChange, riskID, safeID),
		budgetLikelihood(ids, in.Financial.BudgetRemainingQ3, riskID, safeID),
		graphLikelihood(ids, in.Graph, riskID, safeID),
		simulationLikelihood(simulationScores(in.Scenarios), ids),
	}

	prior := uniformDistribution(ids)
	current := copyDistribution(prior, ids)
	trail := []map[string]float64{copyDistribution(current, ids)}
	logLikelihood := 0.0

	for _, ev := range evidence {
		if err := ev.validate(ids); err != nil {
			return model.StrategyResult{}, err
		}

		for _, id := range ids {
			if l := likelihoodFor(ev, id); l > 0 {
				logLikelihood += math.Log(l) * current[id]
			}
		}

		current = bayesUpdate(current, ev, ids)
		trail = append(trail, copyDistribution(current, ids))
	}

	recommended := ids[0]
	for _, id := range ids[1:] {
		if current[id] > current[recommended] {
			recommended = id
		}
	}

	return model.StrategyResult{
		Strategy:            model.StrategyBayesian,
		RecommendedScenario: recommended,
		Confidence:          current[recommended],
		ScenarioScores:      copyDistribution(current, ids),
		Bayesian: &model.BayesianDiagnostics{
			Entropy:       shannonEntropy(current, ids),
			KLDivergence:  klDivergence(current, prior, ids),
			BayesFactor:   bayesFactor(current, ids, recommended),
			LogLikelihood: logLikelihood,
			Prior:         prior,
			EvidenceTrail: trail,
		},
	}, nil
}

// bayesUpdate applies one Bayes step: posterior proportional to prior times
// the (tempered) likelihood, renormalized. A degenerate all-zero product
// falls back to uniform.
func bayesUpdate(current map[string]float64, ev BayesianEvidence, ids []string) map[string]float64 {
	unnormalized := make(map[string]float64, len(ids))
	total := 0.0
	for _, id := range ids {
		likelihood := likelihoodFor(ev, id)
		if ev.Weight < 1.0 {
			likelihood = math.Pow(likelihood, ev.Weight)
		}
		unnormalized[id] = current[id] * likelihood
		total += unnormalized[id]
	}

	out := make(map[string]float64, len(ids))
	if total == 0 {
		uniform := 1.0 / float64(len(ids))
		for _, id := range ids {
			out[id] = uniform
		}
		return out
	}
	for _, id := range ids {
		out[id] = unnormalized[id] / total
	}
	return out
}

// likelihoodFor returns the evidence likelihood for a scenario, defaulting to
// the non-informative 0.5 when the source has no opinion.
func likelihoodFor(ev BayesianEvidence, id string) float64 {
	if l, ok := ev.Likelihoods[id]; ok {
		return l
	}
	return 0.5
}

// shannonEntropy is -sum p*ln(p), 0 for a one-hot posterior and ln(n) for a
// uniform one.
func shannonEntropy(dist map[string]float64, ids []string) float64 {
	entropy := 0.0
	for _, id := range ids {
		if p := dist[id]; p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	return entropy
}

// klDivergence is D(posterior || prior), a measure of how informative the
// evidence was.
func klDivergence(posterior, prior map[string]float64, ids []string) float64 {
	kl := 0.0
	for _, id := range ids {
		p := posterior[id]
		q := prior[id]
		if p > 0 && q > 0 {
			kl += p * math.Log(p/q)
		}
	}
	return kl
}

// bayesFactor is the posterior odds ratio of the winner against the
// runner-up. With a uniform prior the prior odds cancel. A lone scenario, or
// a runner-up with zero posterior, yields +Inf.
func bayesFactor(posterior map[string]float64, ids []string, winner string) float64 {
	runnerUp := ""
	for _, id := range ids {
		if id == winner {
			continue
		}
		if runnerUp == "" || posterior[id] > posterior[runnerUp] {
			runnerUp = id
		}
	}
	if runnerUp == "" || posterior[runnerUp] == 0 {
		return math.Inf(1)
	}
	return posterior[winner] / posterior[runnerUp]
}

func uniformDistribution(ids []string) map[string]float64 {
	dist := make(map[string]float64, len(ids))
	uniform := 1.0 / float64(len(ids))
	for _, id := range ids {
		dist[id] = uniform
	}
	return dist
}

func copyDistribution(dist map[string]float64, ids []string) map[string]float64 {
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = dist[id]
	}
	return out
}
