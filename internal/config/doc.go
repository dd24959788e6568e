// Package config loads, normalizes, and validates tautx configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TAUTULLI_API_KEY environment
// fallback. CLI flags are merged on top by the command layer, so downstream
// code always receives sanitized paths, a canonical export mode, and a
// threshold already known to be inside [0, 100].
package config
