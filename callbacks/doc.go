// Package callbacks provides receivers of workflow step events:
// printing, logging, fan-out and per-run transcripts.
package callbacks
