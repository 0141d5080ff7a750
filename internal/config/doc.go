// Package config provides the configuration system for borderedit.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← BORDEREDIT_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/borderedit/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The config file may be TOML, YAML or JSON; the extension decides.
//
// # Sub-packages
//
//   - loader: file and environment loading into map[string]any
//   - watcher: file watching for live reload
//
// # Basic Usage
//
//	cfg := config.New(config.WithPath("borderedit.toml"))
//	if err := cfg.Load(ctx); err != nil {
//		return err
//	}
//	margin := cfg.Editor().Margin
//
// # Sections
//
//	[editor]
//	margin = 12        # handle sensitivity in surface units
//	editable = true
//
//	[surface]
//	cell_width = 4     # units per terminal column
//	cell_height = 8    # units per terminal row
//
//	[style]
//	stroke = "#0000FF"
//	handle = "#0000FF"
//	active = ""        # empty derives a lighter stroke
//
//	[hooks]
//	script = ""        # Lua file with on_commit / on_delete
//
//	[export]
//	path = ""          # .png, .yaml or .json written on quit
//
//	[logging]
//	level = "info"
//	file = ""
//
// Invalid values never fail a load. The setting keeps its default and the
// problem is reported by ConfigErrors.
//
// # Live Reload
//
// Watch blocks until its context is done, reloading on every change of the
// config file and running the OnChange callbacks:
//
//	cfg.OnChange(func(c *config.Config) {
//		ctl.SetMargin(c.Editor().Margin)
//	})
//	go cfg.Watch(ctx, logError)
package config
