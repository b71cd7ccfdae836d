package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Amvnn/QuickShare/internal/database"
	"github.com/Amvnn/QuickShare/internal/registry"
	"github.com/Amvnn/QuickShare/internal/scheduler"
	"github.com/Amvnn/QuickShare/internal/storage"
	"github.com/Amvnn/QuickShare/internal/webserver"
	"github.com/joho/godotenv"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const dbname = "quickshare.db"

// defaultAllowedTypes lists the accepted uploads when QUICKSHARE_ALLOWED_TYPES
// is not set.
const defaultAllowedTypes = "application/pdf," +
	"application/msword," +
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document," +
	"application/vnd.ms-excel," +
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet," +
	"application/vnd.ms-powerpoint," +
	"application/vnd.openxmlformats-officedocument.presentationml.presentation," +
	"application/zip," +
	"application/x-rar-compressed," +
	"application/x-7z-compressed," +
	"application/json," +
	"application/javascript," +
	"text/plain," +
	"text/html," +
	"image/jpeg," +
	"image/png," +
	"image/gif," +
	"image/webp," +
	"audio/mpeg," +
	"audio/mp3," +
	"video/mp4," +
	"video/x-matroska," +
	"video/x-msvideo," +
	"application/octet-stream"

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	binding string
	port    string
)

func main() {
	godotenv.Load()

	c := &cobra.Command{
		Use:     "quickshare",
		Short:   "File sharing server with expiring links",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.ExactArgs(0),
	}
	c.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for quickshare",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(c.Version)
		},
	})
	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(sweepCmd)

	serverCmd.Flags().StringVarP(&binding, "binding", "b", "0.0.0.0", "Server's binding")
	serverCmd.Flags().StringVarP(&port, "port", "p", "3000", "Server's port")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return database.StormInit(nameWithEnv("DATABASE_PATH", dbname))
		},
	}

	//

	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return database.StormReIndex(nameWithEnv("DATABASE_PATH", dbname))
		},
	}

	//

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired files now",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, closer, err := newRegistry(newLogger())
			if err != nil {
				return err
			}
			defer closer()

			report, err := reg.Sweep(context.Background())
			if err != nil {
				return errors.Wrap(err, "could not sweep")
			}

			fmt.Printf("Swept %d expired files, %d errors\n", report.Deleted, report.Errors)
			return nil
		},
	}

	//

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start server",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			log := newLogger()

			reg, closer, err := newRegistry(log)
			if err != nil {
				return err
			}
			defer closer()

			//

			scheduler.Start(scheduler.Controller{
				Logger:        log,
				Registry:      reg,
				Specification: envORdefault("QUICKSHARE_SWEEP_INTERVAL", "@every 5m"),
			})

			//

			listen := fmt.Sprintf("%s:%s", binding, port)
			ctrl := webserver.Controller{
				Version:  c.Parent().Version,
				Logger:   log,
				Registry: reg,
				BaseURL:  envORdefault("QUICKSHARE_BASE_URL", "http://"+listen),
			}

			engine := webserver.EchoEngine(ctrl)
			webserver.PrintRoutes(engine)

			log.Infof("Server listening on %s", listen)
			return errors.Wrap(
				engine.Start(listen),
				"could not run server",
			)
		},
	}
)

func newLogger() logger.Logger {
	log := logrus.New()
	log.SetFormatter(&logger.LogrusTextFormatter{
		DisableColors:   false,
		ForceColors:     true,
		ForceFormatting: true,
		PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger.WrapLogrus(log)
}

func newRegistry(log logger.Logger) (*registry.Registry, func(), error) {
	config, err := registryConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.StormOpen(nameWithEnv("DATABASE_PATH", dbname))
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not open database")
	}

	backend := storage.NewFileSystem(envORdefault("STORAGE_PATH", "storage"))

	return registry.New(log, db, backend, config), func() {
		db.Close()
	}, nil
}

func registryConfig() (registry.Config, error) {
	config := registry.Config{
		AllowedTypes: strings.Split(envORdefault("QUICKSHARE_ALLOWED_TYPES", defaultAllowedTypes), ","),
	}

	if v := os.Getenv("QUICKSHARE_MAX_FILE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return config, errors.Wrap(err, "QUICKSHARE_MAX_FILE_SIZE")
		}
		config.MaxSize = size
	}

	if v := os.Getenv("QUICKSHARE_DEFAULT_EXPIRY_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return config, errors.Wrap(err, "QUICKSHARE_DEFAULT_EXPIRY_HOURS")
		}
		config.DefaultTTL = time.Duration(hours) * time.Hour
	}

	return config, nil
}

func nameWithEnv(env, name string) string {
	p := os.Getenv(env)
	if len(p) == 0 {
		return name
	}
	return filepath.Join(p, name)
}

func envORdefault(name, fallback string) string {
	p := os.Getenv(name)
	if len(p) == 0 {
		return fallback
	}
	return p
}
