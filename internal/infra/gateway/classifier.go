package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/totegamma/engaja/internal/domain"
)

var tracer = otel.Tracer("gateway")

const (
	DefaultClassifierEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultClassifierModel    = "gemini-3-flash-preview"
	defaultCacheTTL           = 24 * time.Hour
	cacheKeyPrefix            = "engaja:classify:"
)

type ClassifierConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type classificationCache interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// Classifier talks to a generateContent style model endpoint that answers
// with a JSON document.
type Classifier struct {
	client *http.Client
	cache  classificationCache
	config ClassifierConfig
}

func NewClassifier(config ClassifierConfig, mc *memcache.Client) *Classifier {
	if config.Endpoint == "" {
		config.Endpoint = DefaultClassifierEndpoint
	}
	if config.Model == "" {
		config.Model = DefaultClassifierModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}
	c := &Classifier{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
	if mc != nil {
		c.cache = mc
	}
	return c
}

type analysis struct {
	Category             string `json:"category"`
	Severity             string `json:"severity"`
	Summary              string `json:"summary"`
	ConstructiveFeedback string `json:"constructiveFeedback"`
	SafetyFlag           bool   `json:"safetyFlag"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"category":             map[string]any{"type": "STRING"},
		"severity":             map[string]any{"type": "STRING", "enum": []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}},
		"summary":              map[string]any{"type": "STRING"},
		"constructiveFeedback": map[string]any{"type": "STRING"},
		"safetyFlag":           map[string]any{"type": "BOOLEAN"},
	},
	"required": []string{"category", "severity", "summary", "constructiveFeedback", "safetyFlag"},
}

func prompt(description string) string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return fmt.Sprintf(`Analise o seguinte relato de um cidadão sobre um problema urbano: %q.
Classifique-o em uma destas categorias: %s.
Estime a severidade (LOW, MEDIUM, HIGH, CRITICAL).
Gere um resumo curto de 5 palavras.
Gere um feedback construtivo curto (max 1 frase) agradecendo e validando a utilidade do reporte.
Marque safetyFlag como true se o relato envolver risco à segurança do denunciante.`,
		description, strings.Join(names, ", "))
}

func cacheKey(description string) string {
	return fmt.Sprintf("%s%016x", cacheKeyPrefix, xxh3.HashString(description))
}

func (c *Classifier) Classify(ctx context.Context, description string) (domain.Classification, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Classifier.Classify")
	defer span.End()

	if c.config.APIKey == "" {
		return domain.Classification{}, fmt.Errorf("classifier api key is not configured")
	}

	key := cacheKey(description)
	if c.cache != nil {
		item, err := c.cache.Get(key)
		if err == nil {
			var cached analysis
			if json.Unmarshal(item.Value, &cached) == nil {
				return cached.classification(), nil
			}
		} else if !errors.Is(err, memcache.ErrCacheMiss) {
			zap.S().Debugw("classification cache unavailable", "error", err)
		}
	}

	raw, err := c.generate(ctx, description)
	if err != nil {
		span.RecordError(err)
		return domain.Classification{}, err
	}

	var result analysis
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		span.RecordError(err)
		return domain.Classification{}, errors.Wrap(err, "malformed classification")
	}
	classification := result.classification()

	if c.cache != nil {
		value, _ := json.Marshal(result)
		err := c.cache.Set(&memcache.Item{
			Key:        key,
			Value:      value,
			Expiration: int32(c.config.CacheTTL.Seconds()),
		})
		if err != nil {
			zap.S().Debugw("failed to cache classification", "error", err)
		}
	}

	return classification, nil
}

func (c *Classifier) generate(ctx context.Context, description string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt(description)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode request")
	}

	url := strings.TrimRight(c.config.Endpoint, "/") + "/models/" + c.config.Model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}
	for _, candidate := range generated.Candidates {
		for _, p := range candidate.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text, nil
			}
		}
	}
	return "", fmt.Errorf("empty classification response")
}

// classification converts the model answer. An unknown category falls back to
// Infraestrutura so the severity and safety flag still apply.
func (a analysis) classification() domain.Classification {
	category, ok := domain.ParseCategory(a.Category)
	if !ok {
		zap.S().Warnw("unknown category from model, using default", "category", a.Category)
		category = domain.CategoryInfrastructure
	}
	severity, ok := domain.ParseSeverity(strings.ToUpper(a.Severity))
	if !ok {
		severity = domain.SeverityMedium
	}
	return domain.Classification{
		Category:   category,
		Severity:   severity,
		Summary:    strings.TrimSpace(a.Summary),
		Feedback:   strings.TrimSpace(a.ConstructiveFeedback),
		SafetyFlag: a.SafetyFlag,
	}
}
