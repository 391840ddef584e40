// Package config loads and validates rules-gateway configuration from YAML.
//
// Configuration example:
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
//	agent:
//	  url: "https://kibana.example.com"
//	  api_key: "${AGENT_API_KEY}"
//	  agent_id: "rules-assistant"
//	  space: "games"
//	  timeout: "30s"
//
//	session:
//	  cookie_name: "rules_session"
//	  max_age: "8760h"
//
//	ownership:
//	  backend: "memory"
//
//	logging:
//	  level: "info"
//	  format: "text"
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// ${VAR} references are expanded from the environment before parsing, and
// duration fields accept Go duration strings.
package config
