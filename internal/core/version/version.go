// Package version provides information about the build version of the service.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The service, version, commit, and date
// variables are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'chatmirror/internal/core/version.service=chatmirror-syncd'
	// -X 'chatmirror/internal/core/version.version=v0.0.1'
	// -X 'chatmirror/internal/core/version.commit=abcd'
	// -X 'chatmirror/internal/core/version.date=2026-03-01'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	service = "chatmirror"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
