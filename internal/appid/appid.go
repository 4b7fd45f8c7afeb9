// Package appid holds the application identity used for help text, config
// discovery and environment variable prefixes.
package appid

const (
	// BinaryName is the executable name.
	BinaryName = "promptlens"
	// ConfigName names the XDG config and data directories.
	ConfigName = "promptlens"
	// EnvPrefix prefixes environment overrides (PROMPTLENS_JUDGE_BACKEND).
	EnvPrefix = "PROMPTLENS"
	// Description is the one-line summary shown by --help.
	Description = "Prompt quality and risk metrics for LLM prompt batches"
)

// Identity is a snapshot of the application identity.
type Identity struct {
	BinaryName  string
	ConfigName  string
	EnvPrefix   string
	Description string
}

// Get returns the application identity.
func Get() Identity {
	return Identity{
		BinaryName:  BinaryName,
		ConfigName:  ConfigName,
		EnvPrefix:   EnvPrefix,
		Description: Description,
	}
}
