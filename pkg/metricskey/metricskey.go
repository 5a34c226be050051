package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsRequestsClassified is base for counter metric for requests classified by the router
	StatsRequestsClassified = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_requests_classified",
		Help:         "stats_requests_classified provides total requests classified by route",
		RequiredTags: []string{"route"},
	}

	StatsPlansGenerated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_plans_generated",
		Help:         "stats_plans_generated provides total plans generated by source",
		RequiredTags: []string{"source"},
	}

	StatsPlanFallbacks = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_plan_fallbacks",
		Help:         "stats_plan_fallbacks provides total plans replaced with the research fallback",
		RequiredTags: []string{"reason"},
	}

	StatsLLMBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_sent",
		Help:         "stats_llm_bytes_sent provides total bytes sent to LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMBytesReceived = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_received",
		Help:         "stats_llm_bytes_received provides total bytes received from LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_input_tokens",
		Help:         "stats_llm_input_tokens provides total input tokens sent to LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_output_tokens",
		Help:         "stats_llm_output_tokens provides total output tokens received from LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMTotalTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_total_tokens",
		Help:         "stats_llm_total_tokens provides total tokens sent and received from LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsReasoningCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_reasoning_calls_failed",
		Help:         "stats_reasoning_calls_failed provides total failed calls to the reasoning collaborator",
		RequiredTags: []string{"agent", "reason"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsAuditWritesFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_audit_writes_failed",
		Help:         "stats_audit_writes_failed provides total audit records that could not be persisted",
		RequiredTags: []string{"sink"},
	}

	StatsMCPCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mcp_calls_failed",
		Help:         "stats_mcp_calls_failed provides total MCP tool calls that returned an error",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfPlanGeneration = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_plan_generation",
		Help:         "perf_plan_generation provides duration of plan generation",
		RequiredTags: []string{"source"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfWorkflowRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_workflow_run",
		Help:         "perf_workflow_run provides duration of a routed request",
		RequiredTags: []string{"route"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfPlanGeneration,
	&PerfToolCall,
	&PerfWorkflowRun,
	&StatsAuditWritesFailed,
	&StatsLLMBytesReceived,
	&StatsLLMBytesSent,
	&StatsLLMInputTokens,
	&StatsLLMOutputTokens,
	&StatsLLMTotalTokens,
	&StatsMCPCallsFailed,
	&StatsPlanFallbacks,
	&StatsPlansGenerated,
	&StatsReasoningCallsFailed,
	&StatsRequestsClassified,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
