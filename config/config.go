package config

import (
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// LoadEnv loads variables from a .env file if one is present. A missing file
// is not an error; in production the environment is injected by the platform.
func LoadEnv() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}
