package version

var (
	Revision = "unknown" // Git commit hash
	Version  = "unknown" // Numeric version, set with -ldflags at build time
)

// LogFields is for use when using structured logging.
func LogFields() map[string]any {
	return map[string]any{
		"revision": Revision,
		"version":  Version,
	}
}

func String() string {
	return Version + " (" + Revision + ")"
}
