package faults

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/honeybadger-mcp/hbclient"
	"github.com/effective-security/honeybadger-mcp/schema"
	"github.com/effective-security/honeybadger-mcp/tools"
	"github.com/effective-security/honeybadger-mcp/utils"
	"github.com/go-playground/validator/v10"
)

const (
	// ListToolName is the MCP name of the faults listing tool.
	ListToolName = "list_faults"
	// DetailsToolName is the MCP name of the fault details tool.
	DetailsToolName = "get_fault_details"

	// DefaultListLimit is used when list_faults is called without a limit.
	DefaultListLimit = 10
	// DefaultNoticesLimit is used when get_fault_details is called without a limit.
	DefaultNoticesLimit = 5
)

var validate = validator.New()

// ListFaultsRequest represents the list_faults tool input.
type ListFaultsRequest struct {
	Query          string `json:"q,omitempty" jsonschema:"title=Query,description=A search string to filter faults"`
	CreatedAfter   int64  `json:"created_after,omitempty" jsonschema:"title=Created After,description=A Unix timestamp (number of seconds since the epoch)"`
	OccurredAfter  int64  `json:"occurred_after,omitempty" jsonschema:"title=Occurred After,description=A Unix timestamp (number of seconds since the epoch)"`
	OccurredBefore int64  `json:"occurred_before,omitempty" jsonschema:"title=Occurred Before,description=A Unix timestamp (number of seconds since the epoch)"`
	Limit          int    `json:"limit,omitempty" jsonschema:"title=Limit,description=Number of results to return (between 1 and 25; default 10),default=10"`
	Order          string `json:"order,omitempty" jsonschema:"title=Order,description=Order results by 'recent' (most recently occurred first) or 'frequent' (most notifications first),default=recent,enum=recent,enum=frequent" validate:"omitempty,oneof=recent frequent"`
}

// ListFaultsResult represents the list_faults tool output.
type ListFaultsResult struct {
	Query  string           `json:"q,omitempty"`
	Order  string           `json:"order"`
	Limit  int              `json:"limit"`
	Faults []hbclient.Fault `json:"faults"`
}

func (r *ListFaultsResult) String() string {
	var buf bytes.Buffer
	if len(r.Faults) == 0 {
		buf.WriteString("No faults found.\n")
		return buf.String()
	}
	for _, f := range r.Faults {
		fmt.Fprintf(&buf, "- ID: %d\n", f.ID)
		fmt.Fprintf(&buf, "  CLASS: %s\n", f.Klass)
		fmt.Fprintf(&buf, "  MESSAGE: %s\n", f.Message)
		fmt.Fprintf(&buf, "  NOTICES: %d\n", f.NoticesCount)
	}
	return buf.String()
}

// ListTool lists faults of the configured Honeybadger project.
type ListTool struct {
	name        string
	description string
	funcParams  any

	client *hbclient.Client
}

var (
	_ tools.Tool[ListFaultsRequest, ListFaultsResult] = (*ListTool)(nil)
	_ tools.IMCPTool                                  = (*ListTool)(nil)
)

// NewListTool returns the list_faults tool backed by the given client.
func NewListTool(client *hbclient.Client) (*ListTool, error) {
	if client == nil {
		return nil, errors.New("honeybadger client is required")
	}
	sc, err := schema.New(reflect.TypeOf(ListFaultsRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &ListTool{
		name:        ListToolName,
		description: "List faults from Honeybadger with optional search, time filters and ordering.",
		funcParams:  sc.Parameters,
		client:      client,
	}, nil
}

func (t *ListTool) Name() string {
	return t.name
}

func (t *ListTool) Description() string {
	return t.description
}

func (t *ListTool) Parameters() any {
	return t.funcParams
}

func (t *ListTool) Run(ctx context.Context, req *ListFaultsRequest) (*ListFaultsResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.WithMessage(tools.ErrInvalidRequest, err.Error())
	}

	order := hbclient.Order(req.Order)
	if order == "" {
		order = hbclient.OrderRecent
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	limit = hbclient.ClampLimit(limit)

	faults, err := t.client.ListFaults(ctx, hbclient.ListFaultsParams{
		Query:          req.Query,
		Order:          order,
		Limit:          limit,
		CreatedAfter:   req.CreatedAfter,
		OccurredAfter:  req.OccurredAfter,
		OccurredBefore: req.OccurredBefore,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list faults")
	}

	return &ListFaultsResult{
		Query:  req.Query,
		Order:  string(order),
		Limit:  limit,
		Faults: faults,
	}, nil
}

func (t *ListTool) Call(ctx context.Context, input string) (string, error) {
	var req ListFaultsRequest
	if err := json.Unmarshal(utils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

// RegisterMCP registers the tool with an MCP server.
func (t *ListTool) RegisterMCP(r tools.McpServerRegistrator) error {
	return tools.RegisterMCPTool(r, t)
}

// GetFaultDetailsRequest represents the get_fault_details tool input.
type GetFaultDetailsRequest struct {
	FaultID       string `json:"fault_id" jsonschema:"title=Fault ID,description=The fault ID to get details for" validate:"required"`
	CreatedAfter  int64  `json:"created_after,omitempty" jsonschema:"title=Created After,description=A Unix timestamp (number of seconds since the epoch)"`
	CreatedBefore int64  `json:"created_before,omitempty" jsonschema:"title=Created Before,description=A Unix timestamp (number of seconds since the epoch)"`
	Limit         int    `json:"limit,omitempty" jsonschema:"title=Limit,description=Number of notices to return (between 1 and 25; default 5),default=5"`
}

// GetFaultDetailsResult represents the get_fault_details tool output.
type GetFaultDetailsResult struct {
	Fault   *hbclient.Fault   `json:"fault"`
	Notices []hbclient.Notice `json:"notices"`
}

func (r *GetFaultDetailsResult) String() string {
	var buf bytes.Buffer
	if r.Fault != nil {
		fmt.Fprintf(&buf, "FAULT: %d %s\n", r.Fault.ID, r.Fault.Klass)
		fmt.Fprintf(&buf, "MESSAGE: %s\n", r.Fault.Message)
	}
	for _, n := range r.Notices {
		fmt.Fprintf(&buf, "- NOTICE: %s\n", n.ID)
		fmt.Fprintf(&buf, "  AT: %s\n", n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		fmt.Fprintf(&buf, "  MESSAGE: %s\n", n.Message)
	}
	return buf.String()
}

// DetailsTool fetches one fault and a bounded page of its notices.
type DetailsTool struct {
	name        string
	description string
	funcParams  any

	client *hbclient.Client
}

var (
	_ tools.Tool[GetFaultDetailsRequest, GetFaultDetailsResult] = (*DetailsTool)(nil)
	_ tools.IMCPTool                                            = (*DetailsTool)(nil)
)

// NewDetailsTool returns the get_fault_details tool backed by the given client.
func NewDetailsTool(client *hbclient.Client) (*DetailsTool, error) {
	if client == nil {
		return nil, errors.New("honeybadger client is required")
	}
	sc, err := schema.New(reflect.TypeOf(GetFaultDetailsRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &DetailsTool{
		name:        DetailsToolName,
		description: "Get a fault record and its notice occurrences. Notices are ordered by creation time descending.",
		funcParams:  sc.Parameters,
		client:      client,
	}, nil
}

func (t *DetailsTool) Name() string {
	return t.name
}

func (t *DetailsTool) Description() string {
	return t.description
}

func (t *DetailsTool) Parameters() any {
	return t.funcParams
}

func (t *DetailsTool) Run(ctx context.Context, req *GetFaultDetailsRequest) (*GetFaultDetailsResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.WithMessage(tools.ErrInvalidRequest, "fault_id is required")
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultNoticesLimit
	}
	limit = hbclient.ClampLimit(limit)

	details, err := t.client.GetFaultDetails(ctx, req.FaultID, hbclient.NoticesParams{
		Limit:         limit,
		CreatedAfter:  req.CreatedAfter,
		CreatedBefore: req.CreatedBefore,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get details for fault %q", req.FaultID)
	}

	return &GetFaultDetailsResult{
		Fault:   details.Fault,
		Notices: details.Notices,
	}, nil
}

func (t *DetailsTool) Call(ctx context.Context, input string) (string, error) {
	var req GetFaultDetailsRequest
	if err := json.Unmarshal(utils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

// RegisterMCP registers the tool with an MCP server.
func (t *DetailsTool) RegisterMCP(r tools.McpServerRegistrator) error {
	return tools.RegisterMCPTool(r, t)
}
