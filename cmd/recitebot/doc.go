// Package main hosts the recitebot CLI entrypoint and command graph.
//
// Commands split study text into chapters, open the terminal study view,
// manage the book library and recite list, and run the HTTP server in the
// foreground. Configuration is resolved once per invocation; the heavy
// lifting lives in the internal packages.
package main
