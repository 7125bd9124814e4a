package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ResultStoreMemory = "memory"
	ResultStoreRedis  = "redis"
)

type Config struct {
	LogLevel    string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	CORSOrigin  string        `yaml:"cors-origin" env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
	Environment string        `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	ResultStore string        `yaml:"result-store" env:"RESULT_STORE" env-default:"memory"`
	ResultTTL   time.Duration `yaml:"result-ttl" env:"RESULT_TTL" env-default:"24h"`
	Redis       Redis         `yaml:"redis"`
	Game        Game          `yaml:"game"`
	Socket      Socket        `yaml:"socket"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the timings and limits of every room.
type Game struct {
	ComputerMoveDelay time.Duration `yaml:"computer-move-delay" env:"GAME_COMPUTER_MOVE_DELAY" env-default:"1s"`
	CleanupDelay      time.Duration `yaml:"cleanup-delay" env:"GAME_CLEANUP_DELAY" env-default:"5s"`
	FirstRoundDelay   time.Duration `yaml:"first-round-delay" env:"GAME_FIRST_ROUND_DELAY" env-default:"1s"`
	InterRoundPause   time.Duration `yaml:"inter-round-pause" env:"GAME_INTER_ROUND_PAUSE" env-default:"3s"`
	ResponseTimeout   time.Duration `yaml:"response-timeout" env:"GAME_RESPONSE_TIMEOUT" env-default:"5s"`
	MinRoundDelay     time.Duration `yaml:"min-round-delay" env:"GAME_MIN_ROUND_DELAY" env-default:"1s"`
	MaxRoundDelay     time.Duration `yaml:"max-round-delay" env:"GAME_MAX_ROUND_DELAY" env-default:"5s"`
	MinReaction       time.Duration `yaml:"min-reaction" env:"GAME_MIN_REACTION" env-default:"100ms"`
	MaxReaction       time.Duration `yaml:"max-reaction" env:"GAME_MAX_REACTION" env-default:"10s"`
	MaxRounds         int           `yaml:"max-rounds" env:"GAME_MAX_ROUNDS" env-default:"5"`
	Difficulty        string        `yaml:"difficulty" env:"GAME_DIFFICULTY" env-default:"medium"`
}

type Socket struct {
	RateLimit  float64 `yaml:"rate-limit" env:"SOCKET_RATE_LIMIT" env-default:"20"`
	RateBurst  int     `yaml:"rate-burst" env:"SOCKET_RATE_BURST" env-default:"40"`
	SendBuffer int     `yaml:"send-buffer" env:"SOCKET_SEND_BUFFER" env-default:"256"`
}

// MustLoad - load all configurations from the config.yml file, falling back to the environment when the file is absent.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}

		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
