package main

import (
	log "github.com/sirupsen/logrus"
)

// LogConfig configures handling of application log events. Empty values
// fall back to the config file.
type LogConfig struct {
	Level  string `long:"level" env:"LEVEL" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" description:"Logging level (default: warn)"`
	Format string `long:"format" env:"FORMAT" choice:"json" choice:"text" choice:"color" description:"Logging output format (default: text)"`
}

// InitLog configures the logger.
func InitLog(cfg LogConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else if cfg.Format == "text" {
		log.SetFormatter(&log.TextFormatter{})
	} else if cfg.Format == "color" {
		log.SetFormatter(&log.TextFormatter{ForceColors: true})
	}

	if lvl, err := log.ParseLevel(cfg.Level); err != nil {
		log.WithField("err", err).Fatal("unrecognized log level")
	} else {
		log.SetLevel(lvl)
	}
}
