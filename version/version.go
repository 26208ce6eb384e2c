package version

// Version is injected at build time via -ldflags.
var Version = "dev"

func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
