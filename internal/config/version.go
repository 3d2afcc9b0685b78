package config

// Build information, set with -ldflags "-X github.com/azoth-protocol/azoth-deploy/internal/config.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func SetBuildFlags(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}
