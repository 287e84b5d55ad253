package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Manager struct {
	clients map[string]Client
	mu      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]Client),
	}
}

func (m *Manager) RegisterClient(name string, config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var client Client
	var err error

	switch config.Provider {
	case "openai":
		client, err = NewOpenAIClient(config)
	case "gemini":
		client, err = NewGeminiClient(config)
	default:
		return fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return fmt.Errorf("failed to create LLM client: %v", err)
	}

	m.clients[name] = client
	return nil
}

func (m *Manager) GetClient(name string) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[name]
	if !exists {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}

	return client, nil
}

func (m *Manager) RemoveClient(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, name)
}

// WithBackoff retries op with exponential backoff for transient transport
// failures. notify fires once per retry so callers can record the attempt in
// their metrics. Credential failures are never retried.
func WithBackoff(ctx context.Context, maxRetries int, op func() error, notify func(attempt int, err error)) error {
	attempt := 0
	wrapped := func() error {
		err := op()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries)), ctx)
	return backoff.RetryNotify(wrapped, bo, func(err error, _ time.Duration) {
		attempt++
		if notify != nil {
			notify(attempt, err)
		}
	})
}

// IsRetryable reports whether a model-call failure is worth a transport-level
// retry. Bad credentials and malformed requests are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	if strings.Contains(text, "api key") || strings.Contains(text, "unauthorized") ||
		strings.Contains(text, "401") || strings.Contains(text, "permission") {
		return false
	}
	return true
}

// IsCredentialError reports a missing or invalid API credential.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "api key") || strings.Contains(text, "unauthorized") ||
		strings.Contains(text, "invalid authentication") || strings.Contains(text, "401")
}

// IsRateLimitError reports a provider-side rate limit.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "rate limit") || strings.Contains(text, "429") ||
		strings.Contains(text, "quota")
}
