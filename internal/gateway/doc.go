// Package gateway is the narrow port between recitebot and whatever turns
// raw study text into chapters.
//
// Three backends implement Processor: Command runs an external script over
// stdin/stdout, LLM calls a chat completion API in-process, and the HTTP
// client forwards to a running server. WithTimeout bounds every call and Go
// runs one off the UI loop, handing the result back through a Task.
package gateway
