// Package domain translates MCP tool calls into dice rolls.
//
// Handlers decode tool input, call the roll service and return structured
// output that MCP clients can render. Syntax and evaluation failures come back
// as tool errors carrying the engine's message.
package domain
