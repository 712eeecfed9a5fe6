package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"recitebot/internal/config"
	"recitebot/internal/daemonrun"
)

const configEnv = "RECITEBOT_CONFIG"

func main() {
	cfg, _, _, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("recitebotd: %v", err)
	}
}

// configPath returns the configuration file named by RECITEBOT_CONFIG, or an
// empty string to use the default search path.
func configPath() string {
	return strings.TrimSpace(os.Getenv(configEnv))
}
