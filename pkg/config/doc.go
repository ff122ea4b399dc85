// Package config loads client configuration from the environment and an
// optional YAML config file.
//
// Environment variables are mapped with caarlos0/env struct tags, and a
// .env file is picked up automatically in development. LoadFile layers a
// YAML file underneath the environment, so explicit environment variables
// always override file values:
//
//	var cfg authcli.Config
//	if err := config.LoadFile("~/.authcli.yaml", &cfg); err != nil {
//	    log.Fatal(err)
//	}
package config
