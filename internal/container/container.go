// Package container builds the long-lived application graph once at startup:
// LLM client, tracer, agents, services, handlers and router.
package container

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"maestroai/internal/agent"
	"maestroai/internal/config"
	"maestroai/internal/handler"
	"maestroai/internal/llm"
	_ "maestroai/internal/llm/claude" // registers the claude provider
	_ "maestroai/internal/llm/gemini" // registers the gemini provider
	_ "maestroai/internal/llm/openai" // registers the kimi and openai providers
	"maestroai/internal/metrics"
	"maestroai/internal/port"
	"maestroai/internal/router"
	"maestroai/internal/service"
	"maestroai/internal/tracing"
)

// Container holds the wired application. All members are safe for concurrent use.
type Container struct {
	Config        *config.Config
	Client        port.ChatClient
	Tracer        tracing.Tracer
	DefectService service.DefectService
	TextService   service.TextService
	Router        *gin.Engine
}

// New creates the chat client for the configured providers and wires the
// rest of the application around it.
func New(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	client, err := NewChatClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	return Build(cfg, logger, client, tracing.New(cfg.Tracing, logger))
}

// NewChatClient creates the client for the primary provider. When fallback
// providers are configured the result tries them in order after the primary.
func NewChatClient(cfg *config.LLMConfig) (port.ChatClient, error) {
	primaryCfg, err := cfg.ActiveProvider()
	if err != nil {
		return nil, err
	}
	primary, err := llm.NewClient(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", primaryCfg.Provider, err)
	}
	if len(cfg.FallbackProviders) == 0 {
		return primary, nil
	}

	clients := []port.ChatClient{primary}
	for _, name := range cfg.FallbackProviders {
		pc, err := cfg.ProviderConfig(name)
		if err != nil {
			return nil, err
		}
		c, err := llm.NewClient(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s fallback client: %w", name, err)
		}
		clients = append(clients, c)
	}
	return llm.NewFallbackClient(clients...), nil
}

// Build wires agents, services, handlers and the router around client.
func Build(cfg *config.Config, logger zerolog.Logger, client port.ChatClient, tracer tracing.Tracer) (*Container, error) {
	primaryCfg, err := cfg.LLM.ActiveProvider()
	if err != nil {
		return nil, err
	}
	if tracer == nil {
		tracer = tracing.Noop{}
	}
	metrics.Register()

	opts := agent.Options{
		Retry:            agent.RetryPolicyFromConfig(cfg.Retry),
		Image:            cfg.Image,
		StructuredOutput: cfg.LLM.StructuredOutput,
		Tracer:           tracer,
		Timeout:          cfg.Server.RequestTimeout,
	}
	defectAgent := agent.NewDefectAgent(client, opts)
	textAgent := agent.NewTextAgent(client, opts)

	if cfg.LLM.StructuredOutput == config.StructuredOutputNative && !client.SupportsStructuredOutput() {
		logger.Warn().
			Str("provider", client.Provider()).
			Msg("native structured output requested but not supported by provider, extracting JSON from replies")
	}
	logger.Info().
		Str("provider", client.Provider()).
		Str("model", client.Model()).
		Strs("fallback_providers", cfg.LLM.FallbackProviders).
		Str("strategy", defectAgent.Strategy().String()).
		Msg("llm client ready")

	defectSvc := service.NewDefectService(defectAgent, cfg.Image.MaxPixels)
	textSvc := service.NewTextService(textAgent, cfg.Image.MaxPixels)

	r := router.Setup(cfg, logger, router.Handlers{
		Health:  handler.NewHealthHandler(primaryCfg),
		Defect:  handler.NewDefectHandler(defectSvc),
		Extract: handler.NewExtractHandler(textSvc),
	})

	return &Container{
		Config:        cfg,
		Client:        client,
		Tracer:        tracer,
		DefectService: defectSvc,
		TextService:   textSvc,
		Router:        r,
	}, nil
}

// Close flushes pending trace reports.
func (c *Container) Close() {
	c.Tracer.Close()
}
