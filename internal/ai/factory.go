package ai

import (
	"log"
	"time"
)

// Options carries the provider connection details from configuration.
type Options struct {
	OllamaHost   string
	OllamaModel  string
	GeminiAPIKey string
	GeminiModel  string
}

// Factory builds and caches the process-wide AI client and the per-provider
// rate limiters. It replaces hidden module-level singletons with an owned,
// injectable object: construct one Factory, pass it to the orchestrator, and
// call Invalidate when provider settings change.
type Factory struct {
	opts Options

	// One limiter per provider family, shared by every client the factory
	// hands out. The Gemini free tier is much tighter than a local daemon.
	ollamaLimiter *RateLimiter
	geminiLimiter *RateLimiter

	client   *FallbackClient
	primary  string
	fallback string
}

// NewFactory creates a factory with provider-appropriate limiter capacities.
func NewFactory(opts Options) *Factory {
	if opts.OllamaHost == "" {
		opts.OllamaHost = "http://localhost:11434"
	}
	if opts.OllamaModel == "" {
		opts.OllamaModel = "llama3.1:8b"
	}
	if opts.GeminiModel == "" {
		opts.GeminiModel = "gemini-1.5-flash-8b"
	}

	return &Factory{
		opts:          opts,
		ollamaLimiter: NewRateLimiter(120, 5000, 2, time.Second),
		geminiLimiter: NewRateLimiter(60, 1500, 3, 2*time.Second),
	}
}

// Client returns the fallback-composed client for the given primary and
// fallback service names ("mock", "ollama", "gemini"). The client is cached
// until the service selection changes or Invalidate is called; rebuilding it
// is also what re-arms a failed primary.
func (f *Factory) Client(primary, fallback string) *FallbackClient {
	if f.client != nil && primary == f.primary && fallback == f.fallback {
		return f.client
	}

	primaryClient, primaryName := f.newClient(primary)

	var fallbackClient Client
	var fallbackName string
	if fallback != "" && fallback != primary {
		fallbackClient, fallbackName = f.newClient(fallback)
	}

	f.client = NewFallbackClient(primaryClient, primaryName, fallbackClient, fallbackName)
	f.primary = primary
	f.fallback = fallback
	return f.client
}

// Invalidate drops the cached client so the next Client call rebuilds it.
func (f *Factory) Invalidate() {
	f.client = nil
}

// OllamaLimiter exposes the local-provider limiter, mainly for status output.
func (f *Factory) OllamaLimiter() *RateLimiter { return f.ollamaLimiter }

// GeminiLimiter exposes the cloud-provider limiter.
func (f *Factory) GeminiLimiter() *RateLimiter { return f.geminiLimiter }

func (f *Factory) newClient(service string) (Client, string) {
	switch service {
	case "mock":
		return NewMockClient(), "mock"
	case "ollama":
		log.Printf("creating Ollama client: %s / %s", f.opts.OllamaHost, f.opts.OllamaModel)
		return NewOllamaClient(f.opts.OllamaHost, f.opts.OllamaModel, f.ollamaLimiter), "ollama"
	case "gemini":
		if f.opts.GeminiAPIKey == "" {
			log.Println("gemini API key not configured, using mock client")
			return NewMockClient(), "mock"
		}
		log.Println("creating Gemini client")
		return NewGeminiClient(f.opts.GeminiAPIKey, f.opts.GeminiModel, f.geminiLimiter), "gemini"
	default:
		log.Printf("unknown AI service %q, using mock client", service)
		return NewMockClient(), "mock"
	}
}
