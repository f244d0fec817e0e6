// Package service wires MCP transports to the dice tools.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates the
// meaning of each tool to the domain handlers.
package service
