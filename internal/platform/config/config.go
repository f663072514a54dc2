package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var portCmd = flag.Int("port", 3000, "HTTP server port")

type Config struct {
	ServerPort    int
	ZmqApiPort    int
	DataDirectory string
	PageCapacity  int
}

func LoadConfig() Config {
	godotenv.Load(".env")
	return Config{
		ServerPort:    *portCmd,
		ZmqApiPort:    intEnv("ZMQ_API_PORT", 5555),
		DataDirectory: stringEnv("DATA_DIRECTORY", "data"),
		PageCapacity:  intEnv("PAGE_CAPACITY", 128),
	}
}

func stringEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
