// Package analytics fetches material interactions from the hosted classroom
// analytics GraphQL API.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

const searchInteractionsQuery = `query searchMaterialInteractions($query: QueryExpression!, $page: PaginationInput) {
  searchMaterialInteractions(query: $query, page: $page) {
    data {
      material_interaction_id
      start
      end
      person { short_name }
      material { name }
    }
    page_info { count cursor }
  }
}`

// maxErrorBody caps how much of a failed response is echoed into errors.
const maxErrorBody = 512

// Config describes the upstream endpoint and its OAuth2 client credentials.
// Credentials are optional; without them requests are sent unauthenticated.
type Config struct {
	URI          string
	TokenURI     string
	Audience     string
	ClientID     string
	ClientSecret string
	ChunkSize    int
	Timeout      time.Duration
}

// Client queries material interactions page by page.
type Client struct {
	httpClient *http.Client
	uri        string
	chunkSize  int
	logger     *zap.Logger
}

// NewClient builds a client. When client credentials are configured the
// returned client obtains and refreshes bearer tokens automatically.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("analytics source URI is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		if cfg.TokenURI == "" {
			return nil, fmt.Errorf("analytics token URI is required with client credentials")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURI,
		}
		if cfg.Audience != "" {
			cc.EndpointParams = url.Values{"audience": {cfg.Audience}}
		}
		httpClient = cc.Client(ctx)
		httpClient.Timeout = cfg.Timeout
	}

	return newClient(httpClient, cfg.URI, cfg.ChunkSize, logger), nil
}

func newClient(httpClient *http.Client, uri string, chunkSize int, logger *zap.Logger) *Client {
	return &Client{httpClient: httpClient, uri: uri, chunkSize: chunkSize, logger: logger}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Search *searchResult `json:"searchMaterialInteractions"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type searchResult struct {
	Data     []interactionNode `json:"data"`
	PageInfo struct {
		Count  int    `json:"count"`
		Cursor string `json:"cursor"`
	} `json:"page_info"`
}

type interactionNode struct {
	ID       string       `json:"material_interaction_id"`
	Start    *string      `json:"start"`
	End      *string      `json:"end"`
	Person   *personRef   `json:"person"`
	Material *materialRef `json:"material"`
}

type personRef struct {
	ShortName *string `json:"short_name"`
}

type materialRef struct {
	Name *string `json:"name"`
}

type queryCondition struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// FetchInteractions returns every interaction starting inside the query window.
func (c *Client) FetchInteractions(ctx context.Context, query models.InteractionQuery) ([]models.InteractionRecord, error) {
	variables := map[string]interface{}{
		"query": map[string]interface{}{
			"operator": "AND",
			"children": buildConditions(query),
		},
	}

	var (
		records []models.InteractionRecord
		cursor  string
	)
	for page := 1; ; page++ {
		paging := map[string]interface{}{"max": c.chunkSize}
		if cursor != "" {
			paging["cursor"] = cursor
		}
		variables["page"] = paging

		result, err := c.search(ctx, variables)
		if err != nil {
			return nil, fmt.Errorf("fetch interactions page %d: %w", page, err)
		}
		for _, node := range result.Data {
			record, err := node.toRecord()
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		c.logger.Debug("fetched interaction page",
			zap.Int("page", page),
			zap.Int("count", result.PageInfo.Count),
			zap.Int("total", len(records)),
		)

		next := result.PageInfo.Cursor
		if result.PageInfo.Count < c.chunkSize || next == "" || next == cursor {
			break
		}
		cursor = next
	}
	return records, nil
}

func buildConditions(query models.InteractionQuery) []queryCondition {
	conditions := []queryCondition{
		{Field: "start", Operator: "GTE", Value: query.Start.UTC().Format(time.RFC3339)},
		{Field: "start", Operator: "LTE", Value: query.End.UTC().Format(time.RFC3339)},
	}
	if len(query.PersonIDs) > 0 {
		conditions = append(conditions, queryCondition{Field: "person", Operator: "IN", Values: query.PersonIDs})
	}
	if len(query.MaterialIDs) > 0 {
		conditions = append(conditions, queryCondition{Field: "material", Operator: "IN", Values: query.MaterialIDs})
	}
	return conditions
}

func (c *Client) search(ctx context.Context, variables map[string]interface{}) (*searchResult, error) {
	body, err := json.Marshal(graphQLRequest{Query: searchInteractionsQuery, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uri, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("graphql HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}
	if decoded.Data.Search == nil {
		return nil, fmt.Errorf("graphql response has no searchMaterialInteractions data")
	}
	return decoded.Data.Search, nil
}

func (n interactionNode) toRecord() (models.InteractionRecord, error) {
	record := models.InteractionRecord{ID: n.ID}
	if n.Start == nil {
		return record, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("interaction %s has no start", n.ID))
	}
	start, err := parseInstant(*n.Start)
	if err != nil {
		return record, err
	}
	record.Start = start
	if n.End != nil && strings.TrimSpace(*n.End) != "" {
		end, err := parseInstant(*n.End)
		if err != nil {
			return record, err
		}
		record.End = &end
	}
	if n.Person != nil {
		record.StudentName = n.Person.ShortName
	}
	if n.Material != nil {
		record.MaterialName = n.Material.Name
	}
	return record, nil
}

func parseInstant(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrFormat.Code, appErrors.ErrFormat.Status, fmt.Sprintf("invalid timestamp %q", raw))
	}
	return parsed, nil
}
