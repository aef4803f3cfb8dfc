// Package version reports the build identity of the bulkscan binaries
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'bulkscan/internal/core/version.version=v0.1.0'
// -X 'bulkscan/internal/core/version.commit=abcd' -X 'bulkscan/internal/core/version.date=2026-10-01'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Service is the product name used in logs, agent rows and client info
const Service = "bulkscan"

// Info returns the build information
func Info() BuildInfo {
	return BuildInfo{
		Service: Service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Rev is the agent revision recorded with each run: version plus short commit
func Rev() string {
	if commit == "none" || commit == "" {
		return version
	}
	c := commit
	if len(c) > 7 {
		c = c[:7]
	}
	return version + "." + c
}
