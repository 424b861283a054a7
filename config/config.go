package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/bookstore-service/bookstore/internal/server"
	"github.com/bookstore-service/bookstore/pkg/kafka"
	"github.com/bookstore-service/bookstore/pkg/logger"
	"github.com/bookstore-service/bookstore/pkg/postgres"
	"github.com/bookstore-service/bookstore/pkg/redis"
)

type Auth struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"secret" json:"-"`
	TokenTTL  time.Duration `envconfig:"JWT_TOKEN_TTL" default:"1h"`
}

type Borrow struct {
	LoanPeriod time.Duration `envconfig:"LOAN_PERIOD" default:"336h"`
}

type Config struct {
	Server   server.Config   `yaml:"server"`
	Database postgres.Config `yaml:"database"`
	Kafka    kafka.Config
	Redis    redis.Config
	Auth     Auth
	Borrow   Borrow
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
