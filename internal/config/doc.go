// Package config loads, normalizes, and validates xl2json configuration.
//
// Values come from repository defaults, then a TOML file
// (~/.config/xl2json/config.toml or ./xl2json.toml), then XL2JSON_*
// environment variables, optionally seeded from a .env file in the working
// directory. Command-line flags are applied on top by the caller.
package config
