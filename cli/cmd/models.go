package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/stonemill-io/grist/cli/render"
	"github.com/stonemill-io/grist/ollama"
)

// ModelsCommand returns the models command.
// Models is read-only: it reports what the server has installed and
// never pulls anything.
func ModelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List models installed on the Ollama server",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Ollama server base URL",
			},
		),
		Action: modelsAction,
	}
}

func modelsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	var opts []ollama.Option
	if u := c.String("base-url"); u != "" {
		opts = append(opts, ollama.WithBaseURL(u))
	}
	client := ollama.New("", opts...)
	defer func() { _ = client.Close() }()

	models, err := client.ListModels(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot list models: %v", err), 1)
	}

	return r.Render(models, modelsTable(models))
}

// modelsTable projects the model list into table rows.
func modelsTable(models []ollama.Model) render.Table {
	table := render.Table{Headers: []string{"NAME", "SIZE", "MODIFIED"}}
	for _, m := range models {
		table.Rows = append(table.Rows, []string{
			m.Name,
			humanize.Bytes(uint64(m.Size)),
			humanize.Time(m.ModifiedAt),
		})
	}
	return table
}
