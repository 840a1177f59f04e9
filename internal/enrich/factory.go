package enrich

import (
	"fmt"
	"strings"

	"github.com/fintelops/synthex/internal/common"
)

// NewClient creates a narrative client based on the provided configuration.
// The "template" provider is the offline default: it never calls out and
// simply keeps the deterministic explanation.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "template":
		return newTemplateClient(), nil
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported narrative provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}
