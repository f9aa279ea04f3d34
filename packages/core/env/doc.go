// Package env loads .env files so that ${VAR} references in urlmock
// configuration (token, header values) can be resolved from them.
package env
