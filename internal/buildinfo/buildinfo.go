// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/abitbot/itmo-masters-bot/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/abitbot/itmo-masters-bot/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/abitbot/itmo-masters-bot/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Short returns a single human-readable version string for logs and
// status endpoints, with a "dev" fallback for untagged builds.
func Short() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}
