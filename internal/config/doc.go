// Package config loads schedai settings.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file, a .env file, the process environment and finally
// command-line flags (applied by the cmd package).
//
// Example config.yaml:
//
//	server:
//	  addr: ":8000"
//	google:
//	  redirect_url: "https://cal.example.com/auth/callback"
//	scheduling:
//	  time_zone: "Asia/Dhaka"
//	  default_duration: 30m
//	llm:
//	  provider: groq
//	  model: llama3-8b-8192
//	token_store:
//	  backend: valkey
//	  valkey:
//	    url: "localhost:6379"
package config
