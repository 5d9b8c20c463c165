// Package evaluator formats snippet-quality prompts, invokes the hosted
// model backend, and validates the model's JSON evaluation before it is
// returned to callers.
package evaluator
