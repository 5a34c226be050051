// Package llms provides a provider-neutral interface to the language models
// used as reasoning collaborators by the planner and the research tool.
//
// Each subpackage wraps one provider SDK and implements Model.
package llms
