// Package info provides the name and version of the running program.
package info

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

var (
	name    = "portstore"
	version = "dev build"
	license = "MIT"

	info     *Info
	loadInfo sync.Once
)

// Info holds the programs meta information.
type Info struct {
	Name    string
	Version string
	License string

	Commit     string
	CommitTime string
	Dirty      bool
	GoVersion  string
}

// Set sets the program name and version. It must be called before the info is first read.
func Set(setName, setVersion string) {
	if setName != "" {
		name = setName
	}
	if setVersion != "" {
		version = setVersion
	}
}

// GetInfo returns all the meta information about the program.
func GetInfo() *Info {
	loadInfo.Do(func() {
		info = &Info{
			Name:       name,
			Version:    version,
			License:    license,
			Commit:     "[commit unknown]",
			CommitTime: "[commit time unknown]",
			GoVersion:  runtime.Version(),
		}

		buildInfo, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value
			case "vcs.time":
				info.CommitTime = setting.Value
			case "vcs.modified":
				info.Dirty = setting.Value == "true"
			}
		}
	})

	return info
}

// Version returns the short version string.
func Version() string {
	if GetInfo().Dirty {
		return version + "*"
	}
	return version
}

// FullVersion returns the full and detailed version string.
func FullVersion() string {
	i := GetInfo()
	builder := new(strings.Builder)

	fmt.Fprintf(builder, "%s %s\n", i.Name, Version())
	fmt.Fprintf(builder, "\nbuilt with %s (%s) %s/%s\n", i.GoVersion, runtime.Compiler, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(builder, "\ncommit %s\n", i.Commit)
	fmt.Fprintf(builder, "  at %s\n", i.CommitTime)
	fmt.Fprintf(builder, "\nLicensed under the %s license.", i.License)

	return builder.String()
}
