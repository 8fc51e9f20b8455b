package bootstrap

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
}

func LoadConfig() *Config {
	// A local .env is a convenience for development; missing is fine.
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
	}
}

// ClientConfig configures the asrstream command.
type ClientConfig struct {
	ServerURL string
	Token     string
	AudioFile string
	SegmentMS int
	Paced     bool
}

func LoadClientConfig() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		ServerURL: getEnv("ASR_URL", "ws://localhost:8080/v1/voice/asr"),
		Token:     getEnv("ASR_TOKEN", ""),
		AudioFile: getEnv("AUDIO_FILE", ""),
		SegmentMS: getEnvInt("SEGMENT_MS", 300),
		Paced:     getEnv("PACED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
