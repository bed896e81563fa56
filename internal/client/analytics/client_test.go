package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

type capturedRequest struct {
	Query     string `json:"query"`
	Variables struct {
		Query struct {
			Operator string           `json:"operator"`
			Children []queryCondition `json:"children"`
		} `json:"query"`
		Page struct {
			Max    int    `json:"max"`
			Cursor string `json:"cursor"`
		} `json:"page"`
	} `json:"variables"`
}

type graphQLStub struct {
	mu       sync.Mutex
	requests []capturedRequest
	pages    []string
}

func (s *graphQLStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var req capturedRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.requests = append(s.requests, req)
	idx := len(s.requests) - 1
	if idx >= len(s.pages) {
		idx = len(s.pages) - 1
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(s.pages[idx]))
}

func page(count int, cursor string, nodes ...string) string {
	data := "[]"
	if len(nodes) > 0 {
		data = "["
		for i, n := range nodes {
			if i > 0 {
				data += ","
			}
			data += n
		}
		data += "]"
	}
	return fmt.Sprintf(`{"data":{"searchMaterialInteractions":{"data":%s,"page_info":{"count":%d,"cursor":%q}}}}`, data, count, cursor)
}

func node(id, start string) string {
	return fmt.Sprintf(`{"material_interaction_id":%q,"start":%q,"end":null,"person":{"short_name":"Rosa"},"material":{"name":"Globe"}}`, id, start)
}

func newTestClient(t *testing.T, handler http.Handler, chunkSize int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newClient(server.Client(), server.URL, chunkSize, zap.NewNop())
}

func testQuery() models.InteractionQuery {
	return models.InteractionQuery{
		Start: time.Date(2021, 3, 29, 5, 0, 0, 0, time.UTC),
		End:   time.Date(2021, 3, 30, 4, 0, 0, 0, time.UTC),
	}
}

func TestFetchInteractionsPaginates(t *testing.T) {
	stub := &graphQLStub{pages: []string{
		page(2, "c1", node("a", "2021-03-29T14:00:00Z"), node("b", "2021-03-29T14:05:00Z")),
		page(1, "c2", node("c", "2021-03-29T15:00:00.000Z")),
	}}
	client := newTestClient(t, stub, 2)

	records, err := client.FetchInteractions(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "Rosa", *records[0].StudentName)
	assert.Equal(t, "Globe", *records[2].MaterialName)
	assert.Nil(t, records[0].End)

	require.Len(t, stub.requests, 2)
	first := stub.requests[0]
	assert.Equal(t, "AND", first.Variables.Query.Operator)
	assert.Equal(t, []queryCondition{
		{Field: "start", Operator: "GTE", Value: "2021-03-29T05:00:00Z"},
		{Field: "start", Operator: "LTE", Value: "2021-03-30T04:00:00Z"},
	}, first.Variables.Query.Children)
	assert.Equal(t, 2, first.Variables.Page.Max)
	assert.Empty(t, first.Variables.Page.Cursor)
	assert.Equal(t, "c1", stub.requests[1].Variables.Page.Cursor)
}

func TestFetchInteractionsStopsOnRepeatedCursor(t *testing.T) {
	stub := &graphQLStub{pages: []string{
		page(1, "same", node("a", "2021-03-29T14:00:00Z")),
		page(1, "same", node("b", "2021-03-29T14:01:00Z")),
	}}
	client := newTestClient(t, stub, 1)

	records, err := client.FetchInteractions(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Len(t, stub.requests, 2)
}

func TestFetchInteractionsIncludesIDFilters(t *testing.T) {
	stub := &graphQLStub{pages: []string{page(0, "")}}
	client := newTestClient(t, stub, 10)

	query := testQuery()
	query.PersonIDs = []string{"p1"}
	query.MaterialIDs = []string{"m1"}
	_, err := client.FetchInteractions(context.Background(), query)
	require.NoError(t, err)

	children := stub.requests[0].Variables.Query.Children
	require.Len(t, children, 4)
	assert.Equal(t, queryCondition{Field: "person", Operator: "IN", Values: []string{"p1"}}, children[2])
	assert.Equal(t, queryCondition{Field: "material", Operator: "IN", Values: []string{"m1"}}, children[3])
}

func TestFetchInteractionsHTTPError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusServiceUnavailable)
	}), 10)

	_, err := client.FetchInteractions(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graphql HTTP 503")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestFetchInteractionsGraphQLErrors(t *testing.T) {
	stub := &graphQLStub{pages: []string{`{"errors":[{"message":"not authorised"},{"message":"bad query"}]}`}}
	client := newTestClient(t, stub, 10)

	_, err := client.FetchInteractions(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorised; bad query")
}

func TestFetchInteractionsMissingData(t *testing.T) {
	stub := &graphQLStub{pages: []string{`{"data":{}}`}}
	client := newTestClient(t, stub, 10)

	_, err := client.FetchInteractions(context.Background(), testQuery())
	assert.Error(t, err)
}

func TestFetchInteractionsBadTimestampIsFormatError(t *testing.T) {
	stub := &graphQLStub{pages: []string{page(1, "", node("a", "29/03/2021 09:00"))}}
	client := newTestClient(t, stub, 10)

	_, err := client.FetchInteractions(context.Background(), testQuery())
	assert.ErrorIs(t, err, appErrors.ErrFormat)
}

func TestFetchInteractionsMissingStartIsFormatError(t *testing.T) {
	stub := &graphQLStub{pages: []string{page(1, "", `{"material_interaction_id":"a","start":null}`)}}
	client := newTestClient(t, stub, 10)

	_, err := client.FetchInteractions(context.Background(), testQuery())
	assert.ErrorIs(t, err, appErrors.ErrFormat)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	assert.Error(t, err)

	_, err = NewClient(context.Background(), Config{URI: "http://example.test", ClientID: "id"}, nil)
	assert.Error(t, err)

	client, err := NewClient(context.Background(), Config{URI: "http://example.test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, client.chunkSize)
}

func TestNewClientFetchesClientCredentialsToken(t *testing.T) {
	var audience string
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		audience = r.PostForm.Get("audience")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	var authHeader string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(page(0, "")))
	}))
	defer apiServer.Close()

	client, err := NewClient(context.Background(), Config{
		URI:          apiServer.URL,
		TokenURI:     tokenServer.URL,
		Audience:     "https://analytics.test",
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
	}, nil)
	require.NoError(t, err)

	records, err := client.FetchInteractions(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "Bearer tok-123", authHeader)
	assert.Equal(t, "https://analytics.test", audience)
}
