package config

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Sampling temperatures per backend. Cloud models tolerate a little more
// variance; local models drift out of the JSON contract faster.
const (
	OpenAITemperature = 0.3
	OllamaTemperature = 0.2
)

// Prompt file names looked up under Prompts.Dir before falling back to the
// compiled-in defaults.
const (
	PromptFileSystem  = "system.md"
	PromptFileFewShot = "few_shot.md"
)
