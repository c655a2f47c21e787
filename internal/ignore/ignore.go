// Package ignore evaluates .gitignore-style rules cascaded across a directory tree
//
// Each directory may carry its own rule file. Rules are relative to the
// directory they were declared in, and a deeper directory's verdict overrides
// a shallower one, so a child rule file can re-include something a parent
// excluded. The walker pushes a RuleSet when it descends into a directory
// and pops it on the way back up.
package ignore

// Options converts the config into functional options.
func (cfg Config) Options() []Option {
	options := []Option{
		WithIncludeHidden(cfg.IncludeHidden),
		WithIncludeVCS(cfg.IncludeVCS),
		WithDisabled(cfg.Disabled),
		WithParents(cfg.Parents),
		WithGlobalExcludes(cfg.GlobalExcludes),
	}

	if len(cfg.IgnoreFiles) > 0 {
		options = append(options, WithIgnoreFiles(cfg.IgnoreFiles...))
	}

	if len(cfg.CustomRules) > 0 {
		options = append(options, WithCustomRules(cfg.CustomRules))
	}

	if cfg.Logger != nil {
		options = append(options, WithLogger(cfg.Logger))
	}

	return options
}

// IsIgnored is a nil-safe convenience wrapper around Tree.IsIgnored
func IsIgnored(tree *Tree, path string, isDir bool) bool {
	if tree == nil {
		return false
	}
	return tree.IsIgnored(path, isDir)
}
