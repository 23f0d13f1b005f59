/*
Package config loads settings for evented nodes and their journal.

# Overview

Config wraps a map[string]any and provides typed accessor methods that
return a default value when a key is missing or holds the wrong type.
Settings reads the keys understood by this module from a Config.

# File Format

	name: map
	log_level: debug
	metrics: true
	tracing: false
	recover: true
	journal:
	  path: ./events.db
	  types: [move, click]

# Usage

	cfg, err := config.FromFile("evented.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	settings := config.LoadSettings(cfg)
	logger := settings.Logger(os.Stderr)
	node := evented.New(settings.NodeOptions(logger)...)

	store, err := settings.OpenJournal()

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
