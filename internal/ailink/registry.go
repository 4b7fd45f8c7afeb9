package ailink

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/promptlens/promptlens/internal/ailink/driver"
	"github.com/promptlens/promptlens/internal/ailink/driver/anthropic"
	"github.com/promptlens/promptlens/internal/ailink/driver/llamacpp"
	"github.com/promptlens/promptlens/internal/ailink/driver/openai"
)

// Registry builds and caches judge drivers from configuration.
type Registry struct {
	cfg    Config
	getenv func(string) string

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// ResolvedProvider is the driver and model selected for a backend.
type ResolvedProvider struct {
	Backend    string
	ProviderID string
	Driver     driver.Driver
	Model      string
	BaseURL    string
}

// NewRegistry returns a registry for cfg. API keys fall back to the
// provider's conventional environment variable.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, getenv: os.Getenv}
}

// Resolve returns the driver for backend; an empty backend uses the
// configured default.
func (r *Registry) Resolve(backend string) (*ResolvedProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("ailink registry not configured")
	}

	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = strings.ToLower(strings.TrimSpace(r.cfg.Backend))
	}
	if backend == "" {
		backend = BackendLocal
	}

	switch backend {
	case BackendLocal:
		drv, err := r.driverFor(ProviderLlamaCpp)
		if err != nil {
			return nil, err
		}
		return &ResolvedProvider{
			Backend:    backend,
			ProviderID: ProviderLlamaCpp,
			Driver:     drv,
			BaseURL:    drv.(*llamacpp.Client).BaseURL,
		}, nil
	case BackendRemote:
		providerID := strings.ToLower(strings.TrimSpace(r.cfg.Remote.Provider))
		if providerID == "" {
			providerID = ProviderOpenAI
		}
		drv, err := r.driverFor(providerID)
		if err != nil {
			return nil, err
		}
		model := strings.TrimSpace(r.cfg.Remote.Model)
		if model == "" {
			model = DefaultRemoteModel
		}
		return &ResolvedProvider{
			Backend:    backend,
			ProviderID: providerID,
			Driver:     drv,
			Model:      model,
			BaseURL:    strings.TrimSpace(r.cfg.Remote.BaseURL),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported judge backend %q", backend)
	}
}

func (r *Registry) driverFor(providerID string) (driver.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drivers == nil {
		r.drivers = map[string]driver.Driver{}
	}
	if drv, ok := r.drivers[providerID]; ok {
		return drv, nil
	}

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var drv driver.Driver
	switch providerID {
	case ProviderLlamaCpp:
		client := llamacpp.NewClient(r.cfg.Local.BaseURL)
		client.Timeout = timeout
		if r.cfg.Local.MaxNewTokens > 0 {
			client.MaxNewTokens = r.cfg.Local.MaxNewTokens
		}
		drv = client
	case ProviderOpenAI:
		client := openai.NewClient(r.cfg.Remote.BaseURL, r.apiKey("OPENAI_API_KEY"))
		client.Timeout = timeout
		drv = client
	case ProviderAnthropic:
		client := anthropic.NewClient(r.cfg.Remote.BaseURL, r.apiKey("ANTHROPIC_API_KEY"))
		client.Timeout = timeout
		drv = client
	default:
		return nil, fmt.Errorf("unsupported remote provider %q", providerID)
	}

	r.drivers[providerID] = drv
	return drv, nil
}

func (r *Registry) apiKey(envVar string) string {
	if key := strings.TrimSpace(r.cfg.Remote.APIKey); key != "" {
		return key
	}
	if r.getenv == nil {
		return ""
	}
	return strings.TrimSpace(r.getenv(envVar))
}
