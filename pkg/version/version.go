// Package version exposes build-time version information.
package version

import (
	"encoding/json"
	"fmt"
)

var (
	// Version is set at build time from the release tag
	Version = "dev"

	// GitCommit is set at build time to the commit SHA
	GitCommit = "unknown"
)

// Info is the version information surface
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
}

// Get returns the current version information
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit}
}

func (i Info) String() string {
	return fmt.Sprintf("agentpad %s (%s)", i.Version, i.GitCommit)
}

// JSON renders the version information as indented JSON
func (i Info) JSON() (string, error) {
	out, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
