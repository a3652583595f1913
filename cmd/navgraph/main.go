package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/curbz/navgraph/internal/loader"
	"github.com/curbz/navgraph/internal/logging"
	"github.com/curbz/navgraph/internal/metrics"
)

var (
	configPath string
	xplaneRoot string
	logLevel   string

	log     *logrus.Logger
	service *loader.Service
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup reads config.yaml and builds the logger and the service. A
// missing config file is fine when --root is given.
func setup(cmd *cobra.Command, args []string) error {
	navCfg, err := loader.LoadConfig(configPath)
	if err != nil && !(errors.Is(err, os.ErrNotExist) && xplaneRoot != "") {
		return err
	}
	logCfg, err := logging.LoadConfig(configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if xplaneRoot != "" {
		navCfg.XPlaneRoot = xplaneRoot
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	if navCfg.XPlaneRoot == "" {
		return errors.New("no X-Plane root: set navgraph.xplane_root in the config file or pass --root")
	}

	log, err = logging.New(logCfg)
	if err != nil {
		return err
	}
	service = loader.NewService(navCfg, log, metrics.New())
	return nil
}
