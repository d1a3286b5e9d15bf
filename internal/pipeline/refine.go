package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/TobiSchelling/contentforge/internal/sanitize"
)

// RefineIdea rewrites a rough idea into a clearer, more specific one using the
// configured AI client. The input is validated like any other idea before it
// reaches a prompt. An empty model response falls back to the original text.
func (o *Orchestrator) RefineIdea(ctx context.Context, ideaText string) (string, error) {
	clean, err := sanitize.UserInput(ideaText, "idea")
	if err != nil {
		return "", err
	}
	if clean == "" {
		return "", fmt.Errorf("idea text is empty")
	}

	settings, err := o.store.GetSettings()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSettingsNotConfigured, err)
	}
	client := o.factory.Client(settings.AIServicePrimary, settings.AIServiceFallback)

	prompt, err := o.prompts.RenderRefineIdea(clean)
	if err != nil {
		return "", err
	}

	refined, err := client.Generate(ctx, prompt, 500)
	if err != nil {
		return "", fmt.Errorf("refining idea: %w", err)
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return clean, nil
	}
	return refined, nil
}
