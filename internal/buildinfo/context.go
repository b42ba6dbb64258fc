// Package buildinfo carries build-time metadata injected by main via -ldflags.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Context contains build-time metadata that is not user-configurable.
type Context struct {
	Version   string
	BuildDate string
	Commit    string
}

// NewContext creates a build context. An empty commit is filled from the
// VCS stamp embedded by the Go toolchain when available.
func NewContext(version, buildDate, commit string) *Context {
	if commit == "" {
		commit = vcsRevision()
	}
	return &Context{Version: version, BuildDate: buildDate, Commit: commit}
}

// GetVersion returns UnknownValue when unset. Safe on a nil Context.
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate returns UnknownValue when unset.
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// GetCommit returns UnknownValue when unset.
func (c *Context) GetCommit() string {
	if c == nil || c.Commit == "" {
		return UnknownValue
	}
	return c.Commit
}

// Map returns the metadata for health and version output.
func (c *Context) Map() map[string]string {
	return map[string]string{
		"version":    c.GetVersion(),
		"build_date": c.GetBuildDate(),
		"commit":     c.GetCommit(),
		"go_version": runtime.Version(),
	}
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
