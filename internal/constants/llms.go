package constants

const (
	OpenAI = "openai"
	Gemini = "gemini"
)

const (
	OpenAIModel               = "gpt-4o"
	OpenAITemperature         = 0.2
	OpenAIMaxCompletionTokens = 4096

	GeminiModel               = "gemini-2.0-flash"
	GeminiTemperature         = 0.2
	GeminiMaxCompletionTokens = 4096
)

// Transport-level retry budget for a single model call. Distinct from SQL
// regeneration retries, which belong to the pipeline.
const LLMNetworkMaxRetries = 2
