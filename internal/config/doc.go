// Package config holds runtime configuration: tool settings loaded from
// flags and an optional YAML file, the list of watched sites loaded from
// sites.json, and the passphrase resolved from the environment.
package config
