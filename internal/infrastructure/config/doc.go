// Package config loads and validates the m2web CLI configuration.
//
// Configuration is YAML-based with hardcoded defaults and environment
// variable overrides (M2WEB_SECTION_KEY). Credentials are expected to come
// from the environment rather than the file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
