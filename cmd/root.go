package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/loan-eligibility/internal/ai"
	"github.com/spigell/loan-eligibility/internal/ai/gemini"
	"github.com/spigell/loan-eligibility/internal/ai/groq"
	"github.com/spigell/loan-eligibility/internal/resolver"
)

const (
	app = "loan-eligibility"
)

type Config struct {
	AI        *AIConfig      `mapstructure:"ai"`
	Server    *ServerConfig  `mapstructure:"server"`
	Applicant map[string]any `mapstructure:"applicant"`
}

type AIConfig struct {
	Provider      string        `mapstructure:"provider"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FallbackDelay time.Duration `mapstructure:"fallback-delay"`
	MaxLogLength  int           `mapstructure:"max-log-length"`
	Groq          *GroqConfig   `mapstructure:"groq"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
}

type GroqConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base-url"`
	Temperature float64 `mapstructure:"temperature"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "loan-eligibility predicts whether a loan applicant is eligible, asking an AI model first and scoring locally otherwise",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	for key, env := range map[string]string{
		"ai.groq.api-key":        "GROQ_API_KEY",
		"ai.groq.api-key-file":   "GROQ_API_KEY_FILE",
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"server.addr":            "LOAN_ELIGIBILITY_SERVER_ADDR",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is loan-eligibility.yaml in current directory, optional)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", groq.ProviderName)
	v.SetDefault("ai.timeout", resolver.DefaultTimeout)
	v.SetDefault("ai.fallback-delay", resolver.DefaultFallbackDelay)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.groq.model", groq.DefaultModel)
	v.SetDefault("ai.groq.base-url", groq.DefaultBaseURL)
	v.SetDefault("ai.groq.temperature", ai.DefaultTemperature)
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.gemini.temperature", ai.DefaultTemperature)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown-timeout", 10*time.Second)
}

func initConfig() {
	// The version command needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless given explicitly, but it must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Groq == nil {
		config.AI.Groq = &GroqConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
