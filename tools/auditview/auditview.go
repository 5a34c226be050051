// Package auditview implements the audit tool that reads the most recent audit records.
package auditview

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/pkg/schema"
	"github.com/effective-security/toolrouter/tools"
	"github.com/invopop/jsonschema"
)

// ActionView lists recent records
const ActionView = "view"

// Request is the tool input
type Request struct {
	Action string `json:"action,omitempty" yaml:"action,omitempty" jsonschema:"title=Action,description=Only view is supported,default=view,enum=view"`
	Limit  string `json:"limit,omitempty" yaml:"limit,omitempty" jsonschema:"title=Limit,description=Number of most recent records to return,default=5"`
}

// Querier returns the most recent audit records
type Querier interface {
	QueryRecent(ctx context.Context, limit int) ([]*audit.Record, error)
}

// Logs is the tool payload, most recent first
type Logs []*audit.Record

func (l Logs) String() string {
	return "Logs found: " + strconv.Itoa(len(l))
}

// Tool reads the audit trail
type Tool struct {
	querier Querier
	params  *jsonschema.Schema
}

var _ tools.Tool = (*Tool)(nil)

// New returns the audit tool
func New(querier Querier) *Tool {
	return &Tool{
		querier: querier,
		params:  schema.MustNew(reflect.TypeOf(Request{})).Parameters,
	}
}

func (t *Tool) Name() string {
	return tools.AuditTool
}

func (t *Tool) Description() string {
	return "Shows the most recent entries of the audit log and the history of tool invocations."
}

func (t *Tool) Parameters() *jsonschema.Schema {
	return t.params
}

// Invoke returns the most recent records
func (t *Tool) Invoke(ctx context.Context, args tools.Arguments) (*tools.Result, error) {
	action := strings.ToLower(args.Get(tools.ArgAction))
	if action == "" {
		action = ActionView
	}
	if action != ActionView {
		return tools.Failuref("unsupported action: %s", action), nil
	}

	limit := audit.DefaultLimit
	if s := args.Get(tools.ArgLimit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return tools.Failuref("limit must be an integer: %s", s), nil
		}
		limit = n
	}

	list, err := t.querier.QueryRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return tools.Success(Logs(list)), nil
}
