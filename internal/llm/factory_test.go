package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maestroai/internal/config"
	"maestroai/internal/llm"
	"maestroai/internal/port"
	"maestroai/mocks"
)

func TestNewClient_RegisteredProvider(t *testing.T) {
	client := new(mocks.MockChatClient)
	var got *config.ProviderConfig
	llm.RegisterProvider("test-provider", func(cfg *config.ProviderConfig) (port.ChatClient, error) {
		got = cfg
		return client, nil
	})

	cfg := &config.ProviderConfig{Provider: "test-provider", APIKey: "key", Model: "m"}
	c, err := llm.NewClient(cfg)

	require.NoError(t, err)
	assert.Same(t, client, c)
	assert.Same(t, cfg, got)
	assert.Contains(t, llm.Providers(), "test-provider")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := llm.NewClient(&config.ProviderConfig{Provider: "nonexistent"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}
