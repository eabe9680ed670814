package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/totegamma/engaja"
	"github.com/totegamma/engaja/internal/domain"
)

type Config struct {
	City       City       `yaml:"city"`
	Server     Server     `yaml:"server"`
	Classifier Classifier `yaml:"classifier"`
	Uploads    Uploads    `yaml:"uploads"`
	Seed       Seed       `yaml:"seed"`
}

type City struct {
	Name       string  `yaml:"name"`
	CenterLat  float64 `yaml:"centerLat"`
	CenterLng  float64 `yaml:"centerLng"`
	PinSpread  float64 `yaml:"pinSpread"`
	OfficeName string  `yaml:"officeName"`
}

type Server struct {
	Listen         string        `yaml:"listen"`
	Backend        string        `yaml:"backend"` // postgres, mongo, local
	PostgresDsn    string        `yaml:"postgresDsn"`
	MongoURI       string        `yaml:"mongoUri"`
	MongoDatabase  string        `yaml:"mongoDatabase"`
	RedisAddr      string        `yaml:"redisAddr"`
	RedisPassword  string        `yaml:"redisPassword"`
	RedisDB        int           `yaml:"redisDB"`
	MemcachedAddr  string        `yaml:"memcachedAddr"`
	EnableTrace    bool          `yaml:"enableTrace"`
	TraceEndpoint  string        `yaml:"traceEndpoint"`
	JwtSecret      string        `yaml:"jwtSecret"`
	LogEnv         string        `yaml:"logEnv"` // development, production, example
	PersistTimeout time.Duration `yaml:"persistTimeout"`
}

type Classifier struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

type Uploads struct {
	CloudName string        `yaml:"cloudName"`
	APIKey    string        `yaml:"apiKey"`
	APISecret string        `yaml:"apiSecret"`
	Folder    string        `yaml:"folder"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Seed struct {
	PollSeeds []SeedPoll `yaml:"polls"`
	BillSeeds []SeedBill `yaml:"bills"`
}

type SeedPoll struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
	Points   int      `yaml:"points"`
	Active   bool     `yaml:"active"`
}

type SeedBill struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Status      string `yaml:"status"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	config.applyDefaults()

	return config, config.validate()
}

func (c *Config) applyDefaults() {
	if c.City.OfficeName == "" {
		c.City.OfficeName = domain.DefaultOffice
	}
	if c.City.PinSpread <= 0 {
		c.City.PinSpread = 0.05
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Server.Backend == "" {
		c.Server.Backend = "local"
	}
	c.Server.Backend = strings.ToLower(c.Server.Backend)
	if c.Server.MongoDatabase == "" {
		c.Server.MongoDatabase = "engaja"
	}
	if c.Server.LogEnv == "" {
		c.Server.LogEnv = "production"
	}
	if c.Server.PersistTimeout <= 0 {
		c.Server.PersistTimeout = 15 * time.Second
	}
	if c.Classifier.Timeout <= 0 {
		c.Classifier.Timeout = 15 * time.Second
	}
	if c.Classifier.CacheTTL <= 0 {
		c.Classifier.CacheTTL = 24 * time.Hour
	}
	if c.Uploads.Timeout <= 0 {
		c.Uploads.Timeout = domain.UploadTimeout
	}
}

func (c *Config) validate() error {
	switch c.Server.Backend {
	case "local":
	case "postgres":
		if c.Server.PostgresDsn == "" {
			return errors.New("server.postgresDsn is required for the postgres backend")
		}
	case "mongo":
		if c.Server.MongoURI == "" {
			return errors.New("server.mongoUri is required for the mongo backend")
		}
	default:
		return errors.Errorf("unknown backend: %s", c.Server.Backend)
	}
	if c.Server.JwtSecret == "" {
		return errors.New("server.jwtSecret is required")
	}
	for _, b := range c.Seed.BillSeeds {
		if b.Status == "" {
			continue
		}
		if _, ok := domain.ParseBillStatus(b.Status); !ok {
			return errors.Errorf("seed bill %s has unknown status %s", b.Code, b.Status)
		}
	}
	return nil
}

// Polls converts the seed polls into domain polls with fresh ids.
func (s Seed) Polls(now time.Time) []domain.Poll {
	polls := make([]domain.Poll, 0, len(s.PollSeeds))
	for _, p := range s.PollSeeds {
		options := make([]domain.PollOption, 0, len(p.Options))
		for _, text := range p.Options {
			options = append(options, domain.PollOption{ID: engaja.NewID("opt"), Text: text})
		}
		polls = append(polls, domain.Poll{
			ID:        engaja.NewID("poll"),
			Question:  p.Question,
			Options:   options,
			Active:    p.Active,
			Points:    p.Points,
			Voters:    map[string]string{},
			CreatedAt: now,
		})
	}
	return polls
}

func (s Seed) Bills(now time.Time) []domain.Bill {
	bills := make([]domain.Bill, 0, len(s.BillSeeds))
	for _, b := range s.BillSeeds {
		status, ok := domain.ParseBillStatus(b.Status)
		if !ok {
			status = domain.BillInVoting
		}
		bills = append(bills, domain.Bill{
			ID:          engaja.NewID("bill"),
			Code:        b.Code,
			Title:       b.Title,
			Description: b.Description,
			Author:      b.Author,
			Status:      status,
			Voters:      map[string]domain.BillChoice{},
			CreatedAt:   now,
		})
	}
	return bills
}

// SetLogger installs the global zap logger for env.
func SetLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	switch env {
	case "example":
		logger = zap.NewExample()
	case "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
