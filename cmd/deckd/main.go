package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"runtime"
	"syscall"

	"github.com/enescakir/emoji"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/keboo/deckstatus/cmd/deckd/config"
	"github.com/keboo/deckstatus/pkg/plugin"
	"github.com/keboo/deckstatus/pkg/server"
	"github.com/keboo/deckstatus/pkg/streamdeck"
	"github.com/keboo/deckstatus/pkg/version"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "deckd",
		Version: version.String(),
		Usage:   "Azure DevOps and GitHub status keys for the Stream Deck",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "websocket port of the host application",
			},
			&cli.StringFlag{
				Name:  "pluginUUID",
				Usage: "id to register the plugin with",
			},
			&cli.StringFlag{
				Name:  "registerEvent",
				Usage: "event name to register the plugin with",
			},
			&cli.StringFlag{
				Name:  "info",
				Usage: "host application and device information as JSON",
			},
		},
		Commands: []*cli.Command{
			&buttonsCmd,
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", emoji.CrossMark, err.Error())
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Int("port") == 0 || c.String("pluginUUID") == "" || c.String("registerEvent") == "" {
		return fmt.Errorf("deckd is started by the host application with -port, -pluginUUID and -registerEvent")
	}

	err := godotenv.Load(".env")
	if err != nil {
		log.Debug("could not load .env file, relying on env vars")
	}

	config, err := config.Environ()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logFile, err := initLogger(config)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Traceln(config.String())
	}
	logHostInfo(c.String("info"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	conn, err := streamdeck.Dial(dialCtx, c.Int("port"), c.String("registerEvent"), c.String("pluginUUID"))
	cancel()
	if err != nil {
		return err
	}

	actions := plugin.Actions(plugin.Config{
		AzureDevOpsURL: config.AzureDevOps.URL,
		GithubAPIURL:   config.Github.APIURL,
		GithubURL:      config.Github.URL,
		FetchTimeout:   config.RefreshTimeout(),
		FetchFailures:  fetchFailures,
	})
	registry := plugin.NewRegistry(conn, actions, clockwork.NewRealClock(), refreshes, perf)

	if config.MetricsAddr != "" {
		r := server.SetupRouter(registry)
		go func() {
			log.Infof("debug endpoint on %s", config.MetricsAddr)
			err := http.ListenAndServe(config.MetricsAddr, r)
			if err != nil {
				log.Errorf("debug endpoint stopped: %s", err)
			}
		}()
	}

	log.Infof("deckd %s running", version.String())
	err = conn.Run(ctx, plugin.NewDispatcher(registry))
	stop()
	registry.Wait()
	log.Info("bye")

	return err
}

func initLogger(c *config.Config) (io.Closer, error) {
	log.SetReportCaller(true)

	customFormatter := &log.TextFormatter{
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := path.Base(f.File)
			return "", fmt.Sprintf("[%s:%d]", filename, f.Line)
		},
	}
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)

	if c.Logging.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if c.Logging.Trace {
		log.SetLevel(log.TraceLevel)
	}

	// the host application drops the plugin's stdout
	if c.Logging.File == "" {
		return nil, nil
	}
	f, err := os.OpenFile(c.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open log file %s", c.Logging.File)
	}
	log.SetOutput(f)
	return f, nil
}

type hostInfo struct {
	Application struct {
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
	Devices []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"devices"`
}

func logHostInfo(raw string) {
	if raw == "" {
		return
	}
	var info hostInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		log.Warnf("could not parse host info: %s", err)
		return
	}
	log.WithFields(log.Fields{
		"platform": info.Application.Platform,
		"host":     info.Application.Version,
		"plugin":   info.Plugin.Version,
		"devices":  len(info.Devices),
	}).Info("started by host")
}
