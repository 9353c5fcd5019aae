package searchproviders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/memohai/websearch-mcp/internal/config"
	"github.com/memohai/websearch-mcp/internal/prune"
)

const maxLoggedQueryBytes = 120

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type serperRequest struct {
	Q   string  `json:"q"`
	GL  *string `json:"gl"`
	Num int     `json:"num"`
}

// providerSpec owns everything that differs between providers: where the
// credential comes from, the endpoint, the auth header and the body shape.
type providerSpec struct {
	displayName   string
	credentialEnv string
	credential    func(config.SearchConfig) string
	endpoint      func(config.SearchConfig) string
	prepare       func(r *resty.Request, apiKey string, req SearchRequest) *resty.Request
}

var providers = map[ProviderName]providerSpec{
	ProviderTavily: {
		displayName:   "Tavily",
		credentialEnv: "TAVILY_API_KEY",
		credential:    func(c config.SearchConfig) string { return c.TavilyAPIKey },
		endpoint:      func(c config.SearchConfig) string { return firstNonEmpty(c.TavilyURL, config.DefaultTavilyURL) },
		prepare: func(r *resty.Request, apiKey string, req SearchRequest) *resty.Request {
			return r.SetAuthToken(apiKey).SetBody(tavilyRequest{
				Query:      req.Query,
				MaxResults: req.MaxResults,
			})
		},
	},
	ProviderSerper: {
		displayName:   "Serper",
		credentialEnv: "SERPER_API_KEY",
		credential:    func(c config.SearchConfig) string { return c.SerperAPIKey },
		endpoint:      func(c config.SearchConfig) string { return firstNonEmpty(c.SerperURL, config.DefaultSerperURL) },
		prepare: func(r *resty.Request, apiKey string, req SearchRequest) *resty.Request {
			return r.SetHeader("X-API-KEY", apiKey).SetBody(serperRequest{
				Q:   req.Query,
				GL:  req.Country,
				Num: req.MaxResults,
			})
		},
	},
}

// Service forwards search requests to the selected provider and returns its
// JSON response untouched.
type Service struct {
	logger   *slog.Logger
	cfg      config.SearchConfig
	client   *resty.Client
	validate *validator.Validate
}

func NewService(log *slog.Logger, cfg config.SearchConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	logger := log.With(slog.String("service", "search_providers"))
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{logger: logger})

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Service{
		logger:   logger,
		cfg:      cfg,
		client:   client,
		validate: validate,
	}
}

// ListMeta describes the supported providers in a stable order.
func (s *Service) ListMeta() []ProviderMeta {
	names := []ProviderName{ProviderSerper, ProviderTavily}
	metas := make([]ProviderMeta, 0, len(names))
	for _, name := range names {
		spec := providers[name]
		metas = append(metas, ProviderMeta{
			Provider:      string(name),
			DisplayName:   spec.displayName,
			CredentialEnv: spec.credentialEnv,
			Endpoint:      spec.endpoint(s.cfg),
			Configured:    spec.credential(s.cfg) != "",
		})
	}
	return metas
}

// Search runs one upstream call. Unsupported providers, missing credentials
// and invalid requests come back as an in-band {"error": ...} value with a nil
// error; upstream and transport failures are returned as errors.
func (s *Service) Search(ctx context.Context, req SearchRequest) (any, error) {
	name, ok := ParseProviderName(req.Provider)
	if !ok {
		s.logger.Info("web_search called with unsupported provider", slog.String("provider", req.Provider))
		return errorResult(MsgUnsupportedProvider), nil
	}
	spec := providers[name]
	log := s.logger.With(slog.String("provider", string(name)))
	log.Info("web_search called", slog.String("query", prune.Truncate(prune.FirstLines(req.Query, 1), maxLoggedQueryBytes)))

	apiKey := spec.credential(s.cfg)
	if apiKey == "" {
		log.Warn("provider credential not configured", slog.String("env", spec.credentialEnv))
		return errorResult(missingCredentialMessage(spec.credentialEnv)), nil
	}
	if msg := s.validateRequest(req); msg != "" {
		return errorResult(msg), nil
	}

	endpoint := spec.endpoint(s.cfg)
	r := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	resp, err := spec.prepare(r, apiKey, req).Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s search request: %w", name, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.Warn("provider returned error status", slog.Int("status", resp.StatusCode()))
		return nil, &HTTPError{
			Provider:   name,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	decoded, err := decodeJSON(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", name, err)
	}
	log.Debug("web_search finished", slog.Int("status", resp.StatusCode()), slog.Duration("elapsed", resp.Time()))
	return decoded, nil
}

func (s *Service) validateRequest(req SearchRequest) string {
	err := s.validate.Struct(req)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return "Invalid search request: " + strings.Join(msgs, "; ")
}

// decodeJSON keeps numbers as json.Number so provider values are passed
// through without float rounding.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return out, nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// restyLogger routes resty's printf-style logging into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
