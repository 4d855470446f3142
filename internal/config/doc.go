// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation,
// so secrets (database password, Alpaca keys, JWT secret) stay out of the file.
// See configs/phantom.example.yaml for a complete example.
package config
