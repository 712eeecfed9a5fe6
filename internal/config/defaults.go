package config

const (
	defaultConfigPath     = "~/.config/recitebot/config.toml"
	projectConfigName     = "recitebot.toml"
	defaultDataDir        = "~/.local/share/recitebot"
	defaultBooksSubdir    = "books"
	defaultLogsSubdir     = "logs"
	defaultDocumentName   = "study_set.json"
	reviewDBName          = "recitebot.db"
	lockFileName          = "recitebotd.lock"
	defaultBind           = "127.0.0.1:9178"
	defaultProcessPerMin  = 30
	defaultGatewayBackend = BackendCommand
	defaultGatewayCommand = "python3"
	defaultGatewayScript  = "ai_call.py"
	defaultGatewayTimeout = 30
	defaultLLMModel       = "deepseek-chat"
	defaultLLMMaxTokens   = 8192
	defaultLLMTemperature = 0.7
	defaultLLMTimeout     = 120
	defaultReviewStrategy = "standard"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	envAPIKey             = "API_KEY"
	envDeepSeekAPIKey     = "DEEPSEEK_API_KEY"
	envBaseURL            = "BASE_URL"
	envServerToken        = "RECITEBOT_TOKEN"
)

// DefaultLLMBaseURL is the DeepSeek API root.
const DefaultLLMBaseURL = "https://api.deepseek.com"

// Gateway backends.
const (
	BackendCommand = "command"
	BackendLLM     = "llm"
	BackendRemote  = "remote"
)

// knownStrategies mirrors the review package's strategy table.
var knownStrategies = []string{"aggressive", "balanced", "standard"}

// Default returns a Config populated with repository defaults. Directory
// fields derived from data_dir are filled in during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Server: Server{
			Bind:             defaultBind,
			ProcessPerMinute: defaultProcessPerMin,
		},
		Gateway: Gateway{
			Backend:        defaultGatewayBackend,
			Command:        defaultGatewayCommand,
			Args:           []string{defaultGatewayScript},
			TimeoutSeconds: defaultGatewayTimeout,
		},
		LLM: LLM{
			Model:          defaultLLMModel,
			MaxTokens:      defaultLLMMaxTokens,
			Temperature:    defaultLLMTemperature,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Review: Review{
			DefaultStrategy: defaultReviewStrategy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
