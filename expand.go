package gridiou

import (
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome interprets a leading ~ as the current user's home directory. Via
// https://stackoverflow.com/a/17617721/199475
func ExpandHome(path string) string {
	usr, err := user.Current()
	if err != nil {
		return path
	}

	dir := usr.HomeDir

	if path == "~" {
		// In case of "~", which won't be caught by the "else if"
		path = dir
	} else if strings.HasPrefix(path, "~/") {
		// Use strings.HasPrefix so we don't match paths like
		// "/something/~/something/"
		path = filepath.Join(dir, path[2:])
	}

	return path
}
