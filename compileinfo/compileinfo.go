// Package compileinfo reports the version control state a binary was built
// from, so that results can be traced back to the code that produced them.
package compileinfo

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

type CompileInfo struct {
	Package    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("This %s binary was built with %s at commit %v at time %v.%s", c.Package, c.GoVersion, c.Commit, c.CommitTime, mod)
}

// MarshalZerologObject lets the build information be attached to a log line
// with Object("build", info).
func (c CompileInfo) MarshalZerologObject(e *zerolog.Event) {
	e.Str("package", c.Package).
		Str("go", c.GoVersion).
		Str("commit", c.Commit).
		Str("commit_time", c.CommitTime).
		Bool("modified", c.Modified)
}

func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Package = z.Path
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Log writes the build information at info level.
func Log(logger zerolog.Logger) {
	logger.Info().Object("build", Get()).Msg("build information")
}
