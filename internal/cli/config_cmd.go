// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration management.
//
// Examples:
//
//	ragchat config show
//	ragchat config path
//	ragchat config init [--force]
//	ragchat config get api.base_url
//	ragchat config set ui.theme light
//	ragchat config keys
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ragchat/internal/config"
)

// RunConfig handles "ragchat config". cfg is the effective configuration,
// overrides included; set and init work on the file itself.
func RunConfig(args Args, cfg *config.Config, w io.Writer) error {
	p := NewArgParser(args.Raw, "force")

	switch sub := p.Subcommand(); sub {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config", cfg).Print(w)
		}
		return toml.NewEncoder(w).Encode(cfg)

	case "path":
		return configPaths(args, cfg, w)

	case "keys":
		for _, k := range config.Keys() {
			fmt.Fprintln(w, k)
		}
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return usageErrorf("config get needs a key, see 'ragchat config keys'")
		}
		v, err := cfg.Get(key)
		if err != nil {
			return usageErrorf("%v", err)
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		key, value := p.Positional(1), strings.Join(p.PositionalFrom(2), " ")
		if key == "" || p.PositionalCount() < 3 {
			return usageErrorf("config set needs a key and a value")
		}
		return configSet(args, key, value, w)

	case "init":
		return configInit(args, p.BoolFlag("force"), w)

	default:
		return usageErrorf("unknown config subcommand %q (show, path, keys, get, set, init)", sub)
	}
}

// configFile returns the file config commands read and write.
func configFile(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func configPaths(args Args, cfg *config.Config, w io.Writer) error {
	file, err := configFile(args)
	if err != nil {
		return err
	}
	store, err := cfg.StorePath()
	if err != nil {
		return err
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Config"), file)
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Store"), store)
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Log"), logPath)
	return nil
}

// loadFile reads the config file alone, without environment overrides, so
// that saving it does not persist them.
func loadFile(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.LoadJSON(cfg, path)
	} else {
		err = config.LoadTOML(cfg, path)
	}
	return cfg, err
}

func saveFile(cfg *config.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func configSet(args Args, key, value string, w io.Writer) error {
	path, err := configFile(args)
	if err != nil {
		return err
	}
	cfg, err := loadFile(path)
	if err != nil {
		return err
	}

	current, err := cfg.Get(key)
	if err != nil {
		return usageErrorf("%v", err)
	}
	var typed interface{} = value
	if _, isBool := current.(bool); isBool {
		b, err := ParseBoolString(value)
		if err != nil {
			return usageErrorf("%s: %v", key, err)
		}
		typed = b
	}
	if err := cfg.Set(key, typed); err != nil {
		return usageErrorf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return usageErrorf("%v", err)
	}
	if err := saveFile(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("✓"), key, typed)
	return nil
}

func configInit(args Args, force bool, w io.Writer) error {
	path, err := configFile(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return &CommandError{Reason: path + " already exists, use --force to overwrite"}
	}
	if err := saveFile(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
