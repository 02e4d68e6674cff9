package main

import (
	"log/slog"
	"os"

	"github.com/brensch/selfbot/config"
	"gopkg.in/yaml.v3"
)

func main() {
	slog.Info("generating default config")

	confYAML, err := yaml.Marshal(config.Default())
	if err != nil {
		slog.Error("failed to marshal default yaml", "err", err)
		return
	}

	err = os.WriteFile("./demo.yaml", confYAML, 0644)
	if err != nil {
		slog.Error("failed to write default conf to file", "err", err)
		return
	}
}
