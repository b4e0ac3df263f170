// Package config provides the settings of the charbuf tool.
//
// Settings are merged from layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (Config.Set)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← CHARBUF_LOG_LEVEL, CHARBUF_FORMAT, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, chosen by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A missing config file is not an error.
//
// # Basic Usage
//
//	cfg := config.New(config.WithConfigFile("charbuf.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	settings, err := cfg.Settings()
//
// # Settings
//
//	log.level       debug | info | warn | error      (default "info")
//	codec.format    binary | json | yaml | toml      (default "binary")
//	input.encoding  utf-8 | utf-16le | utf-16be      (default "utf-8")
//	workers         concurrent conversions, >= 1     (default NumCPU)
package config
