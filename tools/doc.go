// Package tools defines the uniform capability contract used by the router:
// a Tool is invoked with a flat string argument map and returns a Result.
// The Registry maps canonical tool names and their aliases to adapters.
package tools
