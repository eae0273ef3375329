// Package tools defines the Tool interface for MCP operations, including
// registration, parameter schemas, and the mapping of tool failures to
// MCP error results.
package tools
