package graphbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/emrgen/graphbase/internal/module"
)

// Record is one stored row as the API returns it. Numeric values carry
// whatever encoding/json decoded them as, the helpers coerce.
type Record map[string]any

// Int64 reads a column as int64.
func (r Record) Int64(col string) int64 {
	switch v := r[col].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// String reads a column as a display string.
func (r Record) String(col string) string {
	if s, ok := r[col].(string); ok {
		return s
	}
	if v, ok := r[col]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// SubmitResult reports what a record submission did.
type SubmitResult struct {
	ID      int64  `json:"id"`
	Version int64  `json:"version"`
	Status  string `json:"status"`
}

// SyncRequest declares the desired link set of one source record.
type SyncRequest struct {
	SourceCol string  `json:"source_col"`
	TargetCol string  `json:"target_col"`
	SourceID  int64   `json:"source_id"`
	TargetIDs []int64 `json:"target_ids"`
	LinkType  string  `json:"link_type,omitempty"`
}

// SyncResult reports which targets were linked and unlinked.
type SyncResult struct {
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
	Kept    int     `json:"kept"`
}

// Option is one entry of a selection list.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Node is one node of the exported graph shape.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Status     string         `json:"status,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is one edge of the exported graph shape.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Status    string `json:"status,omitempty"`
	TableName string `json:"table_name,omitempty"`
	ObjectID  int64  `json:"object_id,omitempty"`
}

// Graph is a materialized snapshot of the store.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphQuery selects what the exported graph contains.
type GraphQuery struct {
	IncludeDeleted bool
	Types          []string
	Seeds          []string
	Radius         int // negative means unbounded
	Traversable    []string
}

// OptionQuery selects which records of a table become options.
type OptionQuery struct {
	ValueCol  string
	LabelCol  string
	ExcludeID int64
}

type Client interface {
	io.Closer
	SubmitRecord(ctx context.Context, table string, fields map[string]any) (*SubmitResult, error)
	GetRecord(ctx context.Context, table string, id int64) (Record, error)
	GetRecordVersion(ctx context.Context, table string, id, version int64) (Record, error)
	ListRecords(ctx context.Context, table string, includeDeleted bool) ([]Record, error)
	ListRecordVersions(ctx context.Context, table string, id int64) ([]Record, error)
	DeleteRecord(ctx context.Context, table string, id int64) error
	SyncLinks(ctx context.Context, linkTable string, req *SyncRequest) (*SyncResult, error)
	BuildGraph(ctx context.Context, query GraphQuery) (*Graph, error)
	ListOptions(ctx context.Context, table string, query OptionQuery) ([]Option, error)
}

type client struct {
	baseURL string
	actor   int64
	http    *http.Client
}

// ClientOption configures a client.
type ClientOption func(*client)

// WithActor makes every request act as the given user id.
func WithActor(id int64) ClientOption {
	return func(c *client) {
		c.actor = id
	}
}

func NewClient(baseURL string, opts ...ClientOption) (Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("empty server url")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	c := &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *client) SubmitRecord(ctx context.Context, table string, fields map[string]any) (*SubmitResult, error) {
	var result SubmitResult
	err := c.do(ctx, http.MethodPost, "/v1/records/"+table, fields, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) GetRecord(ctx context.Context, table string, id int64) (Record, error) {
	var rec Record
	err := c.do(ctx, http.MethodGet, recordPath(table, id), nil, &rec)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *client) GetRecordVersion(ctx context.Context, table string, id, version int64) (Record, error) {
	var rec Record
	err := c.do(ctx, http.MethodGet, recordPath(table, id)+"/versions/"+strconv.FormatInt(version, 10), nil, &rec)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *client) ListRecords(ctx context.Context, table string, includeDeleted bool) ([]Record, error) {
	path := "/v1/records/" + table
	if includeDeleted {
		path += "?include_deleted=true"
	}

	var records []Record
	err := c.do(ctx, http.MethodGet, path, nil, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *client) ListRecordVersions(ctx context.Context, table string, id int64) ([]Record, error) {
	var records []Record
	err := c.do(ctx, http.MethodGet, recordPath(table, id)+"/versions", nil, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *client) DeleteRecord(ctx context.Context, table string, id int64) error {
	return c.do(ctx, http.MethodDelete, recordPath(table, id), nil, nil)
}

func (c *client) SyncLinks(ctx context.Context, linkTable string, req *SyncRequest) (*SyncResult, error) {
	var result SyncResult
	err := c.do(ctx, http.MethodPut, "/v1/links/"+linkTable, req, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) BuildGraph(ctx context.Context, query GraphQuery) (*Graph, error) {
	params := url.Values{}
	if query.IncludeDeleted {
		params.Set("include_deleted", "true")
	}
	if len(query.Types) > 0 {
		params.Set("types", strings.Join(query.Types, ","))
	}
	if len(query.Seeds) > 0 {
		params.Set("seeds", strings.Join(query.Seeds, ","))
	}
	if query.Radius >= 0 {
		params.Set("radius", strconv.Itoa(query.Radius))
	}
	if len(query.Traversable) > 0 {
		params.Set("traversable", strings.Join(query.Traversable, ","))
	}

	path := "/v1/graph"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var g Graph
	err := c.do(ctx, http.MethodGet, path, nil, &g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *client) ListOptions(ctx context.Context, table string, query OptionQuery) ([]Option, error) {
	params := url.Values{}
	if query.ValueCol != "" {
		params.Set("value", query.ValueCol)
	}
	if query.LabelCol != "" {
		params.Set("label", query.LabelCol)
	}
	if query.ExcludeID != 0 {
		params.Set("exclude", strconv.FormatInt(query.ExcludeID, 10))
	}

	path := "/v1/options/" + table
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var options []Option
	err := c.do(ctx, http.MethodGet, path, nil, &options)
	if err != nil {
		return nil, err
	}
	return options, nil
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actor != 0 {
		req.Header.Set(module.ActorHeader, strconv.FormatInt(c.actor, 10))
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return apiError(res)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func recordPath(table string, id int64) string {
	return "/v1/records/" + table + "/" + strconv.FormatInt(id, 10)
}

// apiError surfaces the server's error message when there is one.
func apiError(res *http.Response) error {
	var body struct {
		Message any `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Message != nil {
		return fmt.Errorf("%s: %v", res.Status, body.Message)
	}
	return fmt.Errorf("%s", res.Status)
}
