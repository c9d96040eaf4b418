package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
)

const initHeader = `# postbuilder configuration.
# Values may reference environment variables as ${VAR}; a .env or .env.local
# file next to this one is loaded first.
`

// Init writes an example configuration file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Markdown.Extensions = []string{"gfm", "footnote", "typographer"}
	example.Output.StaticDir = "wwwroot"
	example.Output.IgnoredPaths = []string{"drafts"}
	example.Logging.Format = LogFormatText

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	// #nosec G306 -- configuration file is meant to be readable
	if err := os.WriteFile(path, append([]byte(initHeader), data...), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
