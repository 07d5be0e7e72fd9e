package configs

import (
	"flag"
	"os"

	"github.com/mesarpg/mesa/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from --config, MESA_CONFIG
// or a list of conventional locations. An empty result means "run on
// defaults and environment overrides only".
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("MESA_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/mesa/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
