// Package config loads the comprehend configuration.
//
// Values come from a YAML file (comprehend.yml in the working directory,
// cmd/comprehend/config.yml, or the user config directory), an optional
// .env file, and COMPREHEND_* environment variables, later sources
// overriding earlier ones:
//
//	cfg, err := config.Load(config.WithConfigFile(path))
//
// Nested keys map to underscore-separated variable names, so
// COMPREHEND_OUTPUT_FORMAT=json sets output.format.
package config
