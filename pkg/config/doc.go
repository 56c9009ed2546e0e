// Package config handles configuration management for dotsync.
// It layers the embedded defaults, the user's config.toml and DOTSYNC_
// environment variables with koanf, then decodes and validates the result.
package config
