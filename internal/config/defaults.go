package config

const (
	defaultWorkDir   = "~/.local/share/whisperflow/work"
	defaultOutputDir = "~/.local/share/whisperflow/output"
	defaultLogDir    = "~/.local/share/whisperflow/logs"

	defaultTranscriptionBaseURL = "https://api.groq.com/openai/v1/audio/transcriptions"
	defaultTranscriptionModel   = "whisper-large-v3"
	defaultChunkSeconds         = 300
	defaultTranscribeWorkers    = 20
	defaultPacingSeconds        = 4
	defaultTranscribeTimeout    = 120

	defaultTranslationBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultTranslationModel   = "gpt-3.5-turbo"
	defaultTokenBudget        = 1000
	defaultTranslateWorkers   = 10
	defaultTranslateTimeout   = 60

	defaultStorageTimeout  = 30
	defaultIdentityTimeout = 10

	defaultFreeLimit = 3

	defaultNotebookPollInterval = 5

	defaultQueuePollInterval = 5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			ChunkSeconds:   defaultChunkSeconds,
			MaxWorkers:     defaultTranscribeWorkers,
			PacingSeconds:  defaultPacingSeconds,
			TimeoutSeconds: defaultTranscribeTimeout,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TokenBudget:    defaultTokenBudget,
			MaxWorkers:     defaultTranslateWorkers,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Storage: Storage{
			TimeoutSeconds: defaultStorageTimeout,
		},
		Identity: Identity{
			TimeoutSeconds: defaultIdentityTimeout,
		},
		Quota: Quota{
			FreeLimit: defaultFreeLimit,
		},
		Notebook: Notebook{
			PollIntervalSeconds: defaultNotebookPollInterval,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
