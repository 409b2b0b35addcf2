package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultAPIRoot = "https://api.notion.com"
	apiVersion     = "2022-06-28"

	maxPageSize = 100
)

var (
	databaseIDPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)
	pageIDPattern     = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
)

// Record is one page of a database: identifiers plus the raw property
// document, decoded lazily by the entity codecs.
type Record struct {
	ID          string
	URL         string
	CreatedTime string
	Properties  []byte
}

type Config struct {
	Token   string
	APIRoot string
	Timeout time.Duration
}

// Client talks to the page-database HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, validationErrorf("token is required")
	}
	if strings.TrimSpace(cfg.APIRoot) == "" {
		cfg.APIRoot = defaultAPIRoot
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ValidateDatabaseID strips dashes and spaces and checks the 32-hex shape.
func ValidateDatabaseID(databaseID string) (string, error) {
	if strings.TrimSpace(databaseID) == "" {
		return "", validationErrorf("database id is required")
	}
	clean := strings.ReplaceAll(strings.ReplaceAll(databaseID, "-", ""), " ", "")
	if !databaseIDPattern.MatchString(clean) {
		return "", validationErrorf("invalid database id: %s", databaseID)
	}
	return clean, nil
}

// ValidatePageID accepts the dashed UUID form or the 32-hex compact form.
func ValidatePageID(pageID string) (string, error) {
	if strings.TrimSpace(pageID) == "" {
		return "", validationErrorf("page id is required")
	}
	if strings.Contains(pageID, "-") {
		if !pageIDPattern.MatchString(pageID) {
			return "", validationErrorf("invalid page id: %s", pageID)
		}
		return pageID, nil
	}
	if !databaseIDPattern.MatchString(pageID) {
		return "", validationErrorf("invalid page id: %s", pageID)
	}
	return pageID, nil
}

// QueryDatabase runs a filtered, sorted listing. filterJSON and sortsJSON
// are raw JSON fragments; empty strings omit them.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filterJSON string, sortsJSON string) ([]Record, error) {
	cleanID, err := ValidateDatabaseID(databaseID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"page_size": maxPageSize,
	}
	if strings.TrimSpace(filterJSON) != "" {
		payload["filter"] = json.RawMessage(filterJSON)
	}
	if strings.TrimSpace(sortsJSON) != "" {
		payload["sorts"] = json.RawMessage(sortsJSON)
	}

	body, err := c.call(ctx, http.MethodPost, "/v1/databases/"+cleanID+"/query", payload)
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, connectionError("query", fmt.Errorf("response missing results array"))
	}
	records := make([]Record, 0, len(results.Array()))
	for _, page := range results.Array() {
		records = append(records, recordFromPage(page))
	}
	return records, nil
}

// CreatePage inserts a page with the given raw property document.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties []byte) (Record, error) {
	cleanID, err := ValidateDatabaseID(databaseID)
	if err != nil {
		return Record{}, err
	}
	if len(properties) == 0 {
		return Record{}, validationErrorf("properties are required")
	}

	payload := map[string]interface{}{
		"parent":     map[string]string{"database_id": cleanID},
		"properties": json.RawMessage(properties),
	}
	body, err := c.call(ctx, http.MethodPost, "/v1/pages", payload)
	if err != nil {
		return Record{}, err
	}
	return recordFromPage(gjson.ParseBytes(body)), nil
}

// UpdatePage replaces the given properties on an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties []byte) (Record, error) {
	cleanID, err := ValidatePageID(pageID)
	if err != nil {
		return Record{}, err
	}
	if len(properties) == 0 {
		return Record{}, validationErrorf("properties are required")
	}

	payload := map[string]interface{}{
		"properties": json.RawMessage(properties),
	}
	body, err := c.call(ctx, http.MethodPatch, "/v1/pages/"+cleanID, payload)
	if err != nil {
		return Record{}, err
	}
	return recordFromPage(gjson.ParseBytes(body)), nil
}

// GetPage retrieves one page by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (Record, error) {
	cleanID, err := ValidatePageID(pageID)
	if err != nil {
		return Record{}, err
	}
	body, err := c.call(ctx, http.MethodGet, "/v1/pages/"+cleanID, nil)
	if err != nil {
		return Record{}, err
	}
	return recordFromPage(gjson.ParseBytes(body)), nil
}

func recordFromPage(page gjson.Result) Record {
	props := page.Get("properties")
	var raw []byte
	if props.Exists() {
		raw = []byte(props.Raw)
	}
	return Record{
		ID:          page.Get("id").String(),
		URL:         page.Get("url").String(),
		CreatedTime: page.Get("created_time").String(),
		Properties:  raw,
	}
}

func (c *Client) call(ctx context.Context, method string, path string, payload interface{}) ([]byte, error) {
	url := strings.TrimRight(c.cfg.APIRoot, "/") + path

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionError(method+" "+path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, connectionError(method+" "+path, fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}
	if !gjson.ValidBytes(respBody) {
		return nil, connectionError(method+" "+path, fmt.Errorf("invalid JSON response"))
	}
	return respBody, nil
}
