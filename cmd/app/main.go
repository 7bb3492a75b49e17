package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/andreyxaxa/image-uploader/config"
	_ "github.com/andreyxaxa/image-uploader/docs"
	"github.com/andreyxaxa/image-uploader/internal/app"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/joho/godotenv"
)

// ENV_FILE points at a dotenv file other than ./.env; a missing default file
// is fine, a missing explicit one is not.
func loadEnv() error {
	path, explicit := os.LookupEnv("ENV_FILE")
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("main - loadEnv - godotenv.Load(%s): %w", path, err)
	}

	return nil
}

func main() {
	// bootstrap logger until config picks the level
	l := logger.New(os.Getenv("LOG_LEVEL"))

	if err := loadEnv(); err != nil {
		l.Fatal(err)
	}

	cfg, err := config.New()
	if err != nil {
		l.Fatal(fmt.Errorf("main - config.New: %w", err))
	}

	app.Run(cfg)
}
