// Package roll hosts dice expression rolls for the binaries.
//
// It resolves a seed for each request, runs the expression through the dice
// engine and records a span per roll. Parse failures are returned as
// *dice.Diagnostics and evaluation failures as *dice.EvaluationError.
package roll
