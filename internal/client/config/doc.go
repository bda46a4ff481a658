// Package config loads runtime configuration for the catalog client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment: CATALOG_API_URL, CATALOG_DATABASE_PATH.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be either strings like "10s" or
// integer nanoseconds. Every key is optional:
//
//	{
//	  "api_base_url": "https://dummyjson.com",
//	  "database_path": "catalog.db",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "log_file": "",
//	  "create_path": "/products"
//	}
package config
