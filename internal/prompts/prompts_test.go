package prompts

import (
	"strings"
	"testing"

	"github.com/TobiSchelling/contentforge/internal/models"
)

func TestRenderStage1(t *testing.T) {
	m := NewManager()
	profile := models.BrandProfile{
		Bio:            "Engineering leader writing about remote teams.",
		TargetAudience: "engineering managers",
		Tone:           "direct",
		KeyTopics:      []string{"async work", "scaling"},
	}

	prompt, err := m.RenderStage1("1. async beats meetings", profile, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"1. async beats meetings",
		"engineering managers",
		"async work, scaling",
		"direct",
		"3",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{") {
		t.Errorf("unsubstituted placeholder left in prompt: %q", prompt)
	}
}

func TestRenderStage1Defaults(t *testing.T) {
	m := NewManager()
	prompt, err := m.RenderStage1("some ideas", models.BrandProfile{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "professionals") {
		t.Error("empty audience should fall back to a generic one")
	}
}

func TestRenderStage2(t *testing.T) {
	m := NewManager()
	for _, version := range models.AllVersions {
		prompt, err := m.RenderStage2("the brief", version, models.BrandProfile{}, 500)
		if err != nil {
			t.Fatalf("rendering %s: %v", version, err)
		}
		if !strings.Contains(prompt, string(version)) {
			t.Errorf("%s prompt should name its style", version)
		}
		if !strings.Contains(prompt, "the brief") || !strings.Contains(prompt, "500") {
			t.Errorf("%s prompt missing substitutions", version)
		}
	}
}

func TestRenderStage2UnknownVersionFallsBack(t *testing.T) {
	m := NewManager()
	prompt, err := m.RenderStage2("the brief", models.ContentVersion("nonsense"), models.BrandProfile{}, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "bridge") {
		t.Error("unknown version should render the bridge template")
	}
}

func TestRenderStage3(t *testing.T) {
	m := NewManager()

	linkedin, err := m.RenderStage3LinkedIn("the piece", models.BrandProfile{}, models.EmojiMinimal, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(linkedin, "the piece") || !strings.Contains(linkedin, "Minimal") || !strings.Contains(linkedin, "5") {
		t.Error("LinkedIn prompt missing substitutions")
	}

	twitter, err := m.RenderStage3Twitter("the piece", models.BrandProfile{}, models.EmojiNone, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(twitter, "the piece") || !strings.Contains(twitter, "None") {
		t.Error("Twitter prompt missing substitutions")
	}
}

func TestRenderRefineIdea(t *testing.T) {
	m := NewManager()
	prompt, err := m.RenderRefineIdea("a rough note")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "a rough note") {
		t.Error("refine prompt missing the idea text")
	}
	if !strings.Contains(prompt, "Original idea:") {
		t.Error("refine prompt missing its section marker")
	}
}
