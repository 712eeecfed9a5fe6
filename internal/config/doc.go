// Package config loads, normalizes, and validates recitebot configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, loads .env files and honours environment fallbacks such as
// API_KEY and RECITEBOT_TOKEN. Directories derived from paths.data_dir are
// resolved here so the server, CLI and terminal UI agree on where books, logs
// and the recite list live.
package config
