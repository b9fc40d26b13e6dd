// Package config loads nftregistry settings from defaults, a YAML file, a .env
// file and NFTREGISTRY_* environment variables, in increasing precedence.
package config
