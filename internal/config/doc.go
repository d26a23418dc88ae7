// Package config loads, normalizes, and validates mangatl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, applies an optional .env file, and honours
// environment fallbacks such as MANGATL_API_TOKEN. The Config type centralizes
// every knob the daemon and CLI need so state directories, API exposure, and
// proxy defaults are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
