package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/go-sod/nbayes/internal/buildinfo"
	"github.com/go-sod/nbayes/internal/classify"
	"github.com/go-sod/nbayes/internal/integration"
	"github.com/go-sod/nbayes/internal/train"
)

var (
	profileFlag = &cli.StringFlag{
		Name:    "profile",
		Usage:   "TOML file with server address, timeout and credentials",
		EnvVars: []string{"NBAYES_PROFILE"},
	}
	serverFlag = &cli.StringFlag{
		Name:    "server",
		Usage:   "server address, overrides the profile",
		EnvVars: []string{"NBAYES_SERVER"},
	}
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "JSON request body, - reads stdin",
		Required: true,
	}
	nameFlag = &cli.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Usage:   "model name",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "nbayes",
		Usage:   "train and query naive Bayes models of an nbayes server",
		Version: buildinfo.Info.Tag(),
		Flags:   []cli.Flag{profileFlag, serverFlag},
		Commands: []*cli.Command{
			{
				Name:   "train",
				Usage:  "train a model from a JSON dataset",
				Flags:  []cli.Flag{fileFlag, nameFlag},
				Action: trainAction,
			},
			{
				Name:   "classify",
				Usage:  "classify the queries of a JSON file",
				Flags:  []cli.Flag{fileFlag, nameFlag},
				Action: classifyAction,
			},
			{
				Name:   "models",
				Usage:  "list models, or describe one with --name",
				Flags:  []cli.Flag{nameFlag},
				Action: modelsAction,
			},
			{
				Name:   "delete",
				Usage:  "delete a model",
				Flags:  []cli.Flag{nameFlag},
				Action: deleteAction,
			},
			{
				Name:  "version",
				Usage: "print build information",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintf(c.App.Writer, "%s: %s, %s\n",
						buildinfo.Info.Name(), buildinfo.Info.Time(), buildinfo.Info.Tag())
					return err
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect builds the API client and a context bounded by the profile timeout.
func connect(c *cli.Context) (*integration.Client, context.Context, context.CancelFunc, error) {
	p, err := loadProfile(c.String(profileFlag.Name))
	if err != nil {
		return nil, nil, nil, err
	}
	if s := c.String(serverFlag.Name); s != "" {
		p.Server = s
	}
	client, err := integration.NewClient(p.Server, p.Auth)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(c.Context, p.timeout)
	return client, ctx, cancel, nil
}

func readJSON(c *cli.Context, v interface{}) error {
	path := c.String(fileFlag.Name)
	if path == "-" {
		return json.NewDecoder(c.App.Reader).Decode(v)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func trainAction(c *cli.Context) error {
	var req train.Request
	if err := readJSON(c, &req); err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	if n := c.String(nameFlag.Name); n != "" {
		req.Name = n
	}
	client, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()

	summary, err := client.Train(ctx, req)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return printJSON(c, summary)
}

func classifyAction(c *cli.Context) error {
	var req classify.Request
	if err := readJSON(c, &req); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	if n := c.String(nameFlag.Name); n != "" {
		req.Model = n
	}
	client, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()

	resp, err := client.Classify(ctx, req)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	return printJSON(c, resp)
}

func modelsAction(c *cli.Context) error {
	client, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()

	if name := c.String(nameFlag.Name); name != "" {
		raw, err := client.Model(ctx, name)
		if err != nil {
			return fmt.Errorf("describe %s: %w", name, err)
		}
		return printJSON(c, raw)
	}
	models, err := client.Models(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return printJSON(c, models)
}

func deleteAction(c *cli.Context) error {
	name := c.String(nameFlag.Name)
	if name == "" {
		return fmt.Errorf("delete: --name is required")
	}
	client, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()

	found, err := client.Delete(ctx, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if !found {
		return fmt.Errorf("delete %s: model not found", name)
	}
	_, err = fmt.Fprintf(c.App.Writer, "deleted %s\n", name)
	return err
}
