package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/keboo/deckstatus/pkg/client"
	"github.com/keboo/deckstatus/pkg/plugin"
	"github.com/keboo/deckstatus/pkg/status"
	"github.com/urfave/cli/v2"
)

var buttonsCmd = cli.Command{
	Name:  "buttons",
	Usage: "Lists the keys of a running deckd",
	UsageText: `deckd buttons \
     --server http://127.0.0.1:9001 \
     --refresh 5A4B3C2D`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Usage:   "debug endpoint of the running plugin, DECKD_SERVER environment variable alternatively",
			EnvVars: []string{"DECKD_SERVER"},
			Value:   "http://127.0.0.1:9001",
		},
		&cli.StringFlag{
			Name:  "refresh",
			Usage: "refresh the key with this context before listing",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "give up on the debug endpoint after this long",
			Value: 10 * time.Second,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format, eg.: json",
		},
	},
	Action: buttons,
}

func buttons(c *cli.Context) error {
	client := client.NewClient(c.String("server"), &http.Client{Timeout: c.Duration("timeout")})

	if c.String("refresh") != "" {
		err := client.ButtonRefresh(c.String("refresh"))
		if err != nil {
			return fmt.Errorf("cannot refresh %s: %s", c.String("refresh"), err)
		}
	}

	buttons, err := client.ButtonsGet()
	if err != nil {
		return err
	}

	if c.String("output") == "json" {
		buttonsStr := bytes.NewBufferString("")
		e := json.NewEncoder(buttonsStr)
		e.SetIndent("", "  ")
		err = e.Encode(buttons)
		if err != nil {
			return fmt.Errorf("cannot serialize buttons %s", err)
		}
		fmt.Println(buttonsStr)
		return nil
	}

	for _, b := range buttons {
		fmt.Println(formatButton(b))
	}
	return nil
}

func formatButton(b plugin.ButtonState) string {
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	var symbols []string
	for _, s := range b.Statuses {
		symbols = append(symbols, colorize(s))
	}

	line := fmt.Sprintf("%s %s", gray(b.Context), blue(b.Action))
	if len(symbols) > 0 {
		line += " " + strings.Join(symbols, " ")
	} else if b.Title != "" {
		line += " " + strings.ReplaceAll(b.Title, "\n", " ")
	}
	if b.PriorityTarget != nil {
		target := b.PriorityTarget.ID
		if b.PriorityTarget.Repo != "" {
			target = b.PriorityTarget.Repo + " " + target
		}
		line += " " + gray(fmt.Sprintf("(%s)", strings.TrimSpace(target)))
	}
	return line
}

func colorize(s status.Normalized) string {
	var c *color.Color
	switch s.State {
	case status.StateFailed:
		c = color.New(color.FgRed, color.Bold)
	case status.StateDegraded:
		c = color.New(color.FgYellow)
	case status.StateRunning:
		c = color.New(color.FgBlue)
	case status.StateSucceeded:
		c = color.New(color.FgGreen)
	default:
		c = color.New(color.FgHiBlack)
	}
	return c.Sprint(s.Symbol)
}
