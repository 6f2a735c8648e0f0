// Package autoload configures the global logger from the environment as a
// side effect of being imported. Intended for blank imports in main.
package autoload

import (
	"os"

	logx "github.com/ai-alihassanml/BarberFlow-agent-langchain/pkg/logger"
)

func init() {
	logx.Init(logx.Config{
		Debug:        os.Getenv("LOG_DEBUG") == "true",
		PrettyFormat: os.Getenv("LOG_PRETTY_FORMAT") == "true",
	})
}
