package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/stonemill-io/grist/cli/render"
	"github.com/stonemill-io/grist/types"
)

// VersionResponse is the response for the version command.
// Reports the canonical project version (lockstep across all components).
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command.
// Version reports the canonical project version and never contacts the
// inference server.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		resp := VersionResponse{
			Version: types.Version,
			Commit:  commit,
		}

		table := render.Table{Rows: [][]string{
			{"version:", resp.Version},
			{"commit:", resp.Commit},
		}}
		return r.Render(resp, table)
	}
}
