package domain

import "strings"

// CompilerMatches reports whether the solc build recorded in an artifact is the one submitted
// for verification. The leading "v" is optional on both sides and either commit hash may be
// abbreviated; a configured version without a commit matches any build of that release.
func CompilerMatches(built, configured string) bool {
	built = strings.TrimPrefix(built, "v")
	configured = strings.TrimPrefix(configured, "v")
	if built == configured {
		return true
	}

	builtRelease, builtCommit, _ := strings.Cut(built, "+commit.")
	release, commit, hasCommit := strings.Cut(configured, "+commit.")
	if builtRelease != release {
		return false
	}
	if !hasCommit || builtCommit == "" {
		return true
	}
	// solc appends the platform to the commit, e.g. 7893614a.Linux.g++
	builtCommit, _, _ = strings.Cut(builtCommit, ".")
	commit, _, _ = strings.Cut(commit, ".")
	return strings.HasPrefix(builtCommit, commit) || strings.HasPrefix(commit, builtCommit)
}
