package di

import (
	"clave-insights/config"
	"clave-insights/internal/apis/handlers"
	"clave-insights/internal/constants"
	"clave-insights/internal/repositories"
	"clave-insights/internal/services"
	"clave-insights/pkg/dbexec"
	"clave-insights/pkg/llm"
	"clave-insights/pkg/redis"
	"clave-insights/pkg/sqlguard"
	"log"
	"time"

	"go.uber.org/dig"
)

var DiContainer *dig.Container

func Initialize() {
	DiContainer = dig.New()

	// Initialize the optional Redis result cache. An empty host disables it.
	var cache dbexec.ResultCache
	if config.Env.RedisHost != "" {
		redisClient, err := redis.RedisClient(config.Env.RedisHost, config.Env.RedisPort, config.Env.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to initialize Redis client: %v", err)
		}
		cache = redis.NewResultCache(redisClient, time.Duration(config.Env.ResultCacheTTLSec)*time.Second)
	}

	// Initialize the analytics database executor
	executor, err := dbexec.NewExecutor(
		config.Env.DatabaseURL,
		time.Duration(config.Env.QueryTimeoutSec)*time.Second,
		cache,
	)
	if err != nil {
		log.Fatalf("Failed to initialize database executor: %v", err)
	}

	if err := DiContainer.Provide(func() *dbexec.Executor { return executor }); err != nil {
		log.Fatalf("Failed to provide database executor: %v", err)
	}

	// Interaction log repository shares the executor's connection pool
	if err := DiContainer.Provide(func(executor *dbexec.Executor) repositories.InteractionRepository {
		return repositories.NewInteractionRepository(executor.DB())
	}); err != nil {
		log.Fatalf("Failed to provide interaction repository: %v", err)
	}

	// Add LLM Manager
	if err := DiContainer.Provide(func() *llm.Manager {
		manager := llm.NewManager()

		switch config.Env.DefaultLLMClient {
		case constants.OpenAI:
			err := manager.RegisterClient(constants.OpenAI, llm.Config{
				Provider:            constants.OpenAI,
				Model:               config.Env.OpenAIModel,
				APIKey:              config.Env.OpenAIAPIKey,
				MaxCompletionTokens: config.Env.OpenAIMaxCompletionTokens,
				Temperature:         config.Env.OpenAITemperature,
			})
			if err != nil {
				log.Printf("Warning: Failed to register OpenAI client: %v", err)
			}
		case constants.Gemini:
			err := manager.RegisterClient(constants.Gemini, llm.Config{
				Provider:            constants.Gemini,
				Model:               config.Env.GeminiModel,
				APIKey:              config.Env.GeminiAPIKey,
				MaxCompletionTokens: config.Env.GeminiMaxCompletionTokens,
				Temperature:         config.Env.GeminiTemperature,
			})
			if err != nil {
				log.Printf("Warning: Failed to register Gemini client: %v", err)
			}
		}
		return manager
	}); err != nil {
		log.Fatalf("Failed to provide LLM manager: %v", err)
	}

	// SQL safety validator over the published allow-list
	if err := DiContainer.Provide(func() *sqlguard.Validator {
		return sqlguard.NewValidator(
			constants.AllowedTables,
			int64(constants.MaxResultRows),
			constants.MaxJoins,
			constants.MaxNestedSelects,
		)
	}); err != nil {
		log.Fatalf("Failed to provide SQL validator: %v", err)
	}

	// Pipeline service wires every stage together
	if err := DiContainer.Provide(func(
		executor *dbexec.Executor,
		sqlValidator *sqlguard.Validator,
		llmManager *llm.Manager,
		interactions repositories.InteractionRepository,
	) *services.PipelineService {
		llmClient, err := llmManager.GetClient(config.Env.DefaultLLMClient)
		if err != nil {
			log.Fatalf("Failed to get default LLM client: %v", err)
		}

		return services.NewPipelineService(
			services.NewContentFilter(llmClient),
			services.NewQueryGenerator(llmClient),
			sqlValidator,
			executor,
			services.NewDataAnalyzer(llmClient),
			interactions,
		)
	}); err != nil {
		log.Fatalf("Failed to provide pipeline service: %v", err)
	}

	// Insight Handler
	if err := DiContainer.Provide(func(pipeline *services.PipelineService, interactions repositories.InteractionRepository) *handlers.InsightHandler {
		return handlers.NewInsightHandler(pipeline, interactions)
	}); err != nil {
		log.Fatalf("Failed to provide insight handler: %v", err)
	}
}

// GetInsightHandler retrieves the InsightHandler from the DI container
func GetInsightHandler() (*handlers.InsightHandler, error) {
	var handler *handlers.InsightHandler
	err := DiContainer.Invoke(func(h *handlers.InsightHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}
