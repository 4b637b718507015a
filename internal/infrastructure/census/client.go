package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/census-statistics-service/internal/config"
	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	forZCTA   = "zip code tabulation area:*"
	forCounty = "county:*"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	stateFIPS  string
	cfg        *config.CensusConfig
	logger     *zap.Logger
}

// NewCensusClient creates a client for the census statistics API.
func NewCensusClient(cfg *config.CensusConfig, logger *zap.Logger) repository.CensusRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		stateFIPS: cfg.StateFIPS,
		cfg:       cfg,
		logger:    logger,
	}
}

// groupResponse mirrors the group schema endpoint. Older vintages only
// declare the variables map, leaving the group descriptor fields empty.
type groupResponse struct {
	Label     string                         `json:"label"`
	Concept   string                         `json:"concept"`
	Universe  string                         `json:"universe"`
	Variables map[string]domain.VariableMeta `json:"variables"`
}

// FetchGroupMetadata fetches and normalizes a table group's schema.
func (c *client) FetchGroupMetadata(ctx context.Context, year int, dataset, group string) (*domain.GroupMetadata, error) {
	endpoint := fmt.Sprintf("%s/%d/%s/groups/%s.json", c.baseURL, year, dataset, group)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch group %s: %w", group, err)
	}

	var resp groupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode group %s metadata: %w", group, err)
	}

	meta := &domain.GroupMetadata{
		Name:      group,
		Label:     resp.Label,
		Concept:   resp.Concept,
		Universe:  resp.Universe,
		Variables: make(map[string]domain.VariableMeta, len(resp.Variables)),
	}

	for name, v := range resp.Variables {
		v.Name = name
		meta.Variables[name] = v
		if meta.Concept == "" && v.Concept != "" {
			meta.Concept = v.Concept
		}
	}

	c.logger.Debug("Fetched group metadata",
		zap.String("group", group),
		zap.Int("variable_count", len(meta.Variables)))

	return meta, nil
}

// FetchZCTARecords queries tabular data at ZCTA granularity. The endpoint
// has no state filter at this granularity; the aggregate builder narrows
// the nationwide rows to the known in-state universe.
func (c *client) FetchZCTARecords(ctx context.Context, year int, dataset string, variables []string) ([]domain.CensusRecord, error) {
	return c.fetchTabular(ctx, year, dataset, variables, forZCTA, "")
}

// FetchCountyRecords queries tabular data at county granularity within the
// configured state.
func (c *client) FetchCountyRecords(ctx context.Context, year int, dataset string, variables []string) ([]domain.CensusRecord, error) {
	return c.fetchTabular(ctx, year, dataset, variables, forCounty, "state:"+c.stateFIPS)
}

func (c *client) fetchTabular(ctx context.Context, year int, dataset string, variables []string, forClause, inClause string) ([]domain.CensusRecord, error) {
	// No estimate variables selected: nothing to fetch, skip the network
	// call entirely.
	if len(variables) == 0 {
		return []domain.CensusRecord{}, nil
	}

	params := url.Values{}
	params.Set("get", strings.Join(variables, ","))
	params.Set("for", forClause)
	if inClause != "" {
		params.Set("in", inClause)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	endpoint := fmt.Sprintf("%s/%d/%s?%s", c.baseURL, year, dataset, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch tabular data (for=%s): %w", forClause, err)
	}

	var table [][]string
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("decode tabular data (for=%s): %w", forClause, err)
	}
	if len(table) == 0 {
		return []domain.CensusRecord{}, nil
	}

	header := table[0]
	records := make([]domain.CensusRecord, 0, len(table)-1)
	for _, row := range table[1:] {
		rec := make(domain.CensusRecord, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}

	c.logger.Debug("Fetched tabular records",
		zap.String("for", forClause),
		zap.Int("record_count", len(records)))

	return records, nil
}

// get performs one GET with bounded constant-backoff retries. Non-2xx and
// transport errors are retried; the final error carries the URL for manual
// follow-up.
func (c *client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("status code %d: %s", resp.StatusCode, string(raw))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		return nil
	}

	err := backoff.Retry(
		op,
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryInterval), uint64(c.cfg.MaxRetries)),
			ctx,
		),
	)
	if err != nil {
		c.logger.Error("Census API request failed",
			zap.String("url", endpoint),
			zap.Error(err))
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}

	return body, nil
}
