// Package llm is a small client for DeepSeek and other OpenAI-compatible chat
// completion APIs.
//
// Requests run in JSON response mode. Rate limits, server errors, timeouts
// and empty completions are retried with capped exponential backoff that
// honours Retry-After. DecodeJSON unpacks model output that arrives wrapped
// in markdown fences or prose.
package llm
