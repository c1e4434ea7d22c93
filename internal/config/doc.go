// Package config loads topicbus settings.
//
// Settings are resolved in layers, each overriding the previous:
//
//  1. Built-in defaults (Default)
//  2. A TOML file
//  3. Variables from .env files, for names not already in the environment
//  4. Environment variables prefixed with TOPICBUS_
//
// Example TOML file:
//
//	[bus]
//	deferred_queue_size = 4096
//	deferred_workers = 1
//	handler_timeout = "2s"
//	error_policy = "collect"
//	strict_payload = true
//
//	[log]
//	level = "debug"
//	format = "console"
//
//	[metrics]
//	addr = ":9090"
//	namespace = "topicbus"
//
// The same settings as environment variables:
//
//	TOPICBUS_BUS_DEFERRED_QUEUE_SIZE=4096
//	TOPICBUS_BUS_HANDLER_TIMEOUT=2s
//	TOPICBUS_LOG_LEVEL=debug
//	TOPICBUS_METRICS_ADDR=:9090
package config
