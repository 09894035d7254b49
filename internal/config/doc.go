// Package config loads, normalizes, and validates lyricrater configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for API keys
// such as GEMINI_API_KEY, DEEPSEEK_API_KEY, and ANTHROPIC_API_KEY. Each
// provider keeps its own section so switching providers on the command line
// never mixes credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
