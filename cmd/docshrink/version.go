package main

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

type buildInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go" yaml:"go"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	BuildTime string `json:"built,omitempty" yaml:"built,omitempty"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
}

func readBuildInfo() buildInfo {
	bi := buildInfo{Version: "unknown", GoVersion: "unknown"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}

	bi.Version = info.Main.Version
	bi.GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			bi.Commit = setting.Value
		case "vcs.time":
			bi.BuildTime = setting.Value
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		}
	}

	return bi
}

func (bi buildInfo) writeText(w io.Writer) {
	fmt.Fprintf(w, "docshrink %s (%s)\n", bi.Version, bi.GoVersion)
	if bi.Commit != "" {
		dirty := ""
		if bi.Modified {
			dirty = " (dirty)"
		}
		fmt.Fprintf(w, "commit: %s%s\n", bi.Commit, dirty)
	}
	if bi.BuildTime != "" {
		fmt.Fprintf(w, "built: %s\n", bi.BuildTime)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Flags: []cli.Flag{formatFlag},
	Action: func(ctx context.Context, command *cli.Command) error {
		bi := readBuildInfo()

		structured, err := writeStructured(ctx, command.Root().Writer, command.String("format"), bi)
		if err != nil {
			return err
		}
		if !structured {
			bi.writeText(command.Root().Writer)
		}
		return nil
	},
}
