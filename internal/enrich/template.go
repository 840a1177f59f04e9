package enrich

import "context"

// templateClient is the offline narrative provider. It returns an empty
// narrative, which the enricher treats as "keep the template explanation".
type templateClient struct{}

func newTemplateClient() Client {
	return &templateClient{}
}

// GenerateNarrative never produces a narrative; the deterministic template
// explanation already covers the offline case.
func (c *templateClient) GenerateNarrative(_ context.Context, _ string) (NarrativeResponse, error) {
	return NarrativeResponse{}, nil
}
