// Package config loads the host configuration from environment variables.
//
// Server settings:
//
//	APPHOST_HOST="0.0.0.0"
//	APPHOST_PORT="8080"
//	APPHOST_READ_TIMEOUT="15s"
//	APPHOST_WRITE_TIMEOUT="15s"
//	APPHOST_SHUTDOWN_TIMEOUT="30s"
//
// Plugin settings:
//
//	APPHOST_PLUGINS="/opt/plugins/docs,/opt/plugins/shell:terminal"
//	APPHOST_PLUGIN_PATH="/usr/share/apphost/plugins"
//	APPHOST_PLUGIN_LOAD_CONCURRENCY="4"
//	APPHOST_PLUGIN_STARTUP_TIMEOUT="30s"
//
// Observability settings:
//
//	APPHOST_LOG_LEVEL="info"      # debug, info, warn, error
//	APPHOST_LOG_FORMAT="json"     # json, text
//	APPHOST_METRICS_ENABLED="true"
//	APPHOST_OTEL_ENABLED="false"
//	APPHOST_OTEL_ENDPOINT="localhost:4317"
//
// Outbound requests made by plugins use APPHOST_OUTBOUND_TIMEOUT together with
// the standard HTTP_PROXY and HTTPS_PROXY variables, see package network.
//
// Usage:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
