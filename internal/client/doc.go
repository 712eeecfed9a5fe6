// Package client is the HTTP client for a recitebot server. It saves books
// and forwards text for processing, turning error replies into
// *ResponseError values that carry the server's message.
package client
