package main

import (
	"fmt"
	"os"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/AlexanderRichey/newsrss/internal/builder"
	"github.com/AlexanderRichey/newsrss/internal/proj"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type buildOptions struct {
	ConfigPath  string
	EnvFile     string
	PostsDir    string
	OutputFile  string
	SiteURL     string
	Title       string
	Description string
	Author      string
	Minify      bool
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		o        buildOptions
	)

	cmd := &cobra.Command{
		Use:          "newsrss",
		Short:        "Generate an RSS feed from a directory of markdown posts",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.config(cmd.Flags())
			if err != nil {
				return err
			}

			b, err := builder.New(c, newLogger(logLevel).GetLogger("builder"))
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			return b.Build()
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	bindBuildFlags(cmd.Flags(), &o)

	cmd.AddCommand(newInitCmd(&logLevel))

	return cmd
}

func newInitCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new news directory with a config file and an example post",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "news"
			if len(args) == 1 {
				dir = args[0]
			}

			return proj.New(dir, newLogger(*logLevel).GetLogger("init"))
		},
	}
}

func bindBuildFlags(fs *flag.FlagSet, o *buildOptions) {
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "TOML config file; defaults are used when empty")
	fs.StringVar(&o.EnvFile, "env-file", ".env", "dotenv file read before "+builder.SiteURLEnv+" is applied")
	fs.StringVar(&o.PostsDir, "posts", "", "posts directory, relative to current working directory")
	fs.StringVarP(&o.OutputFile, "output", "o", "", "output file, relative to current working directory")
	fs.StringVar(&o.SiteURL, "site-url", "", "public base URL of the news site")
	fs.StringVar(&o.Title, "title", "", "channel title")
	fs.StringVar(&o.Description, "description", "", "channel description")
	fs.StringVar(&o.Author, "author", "", "author used when a post does not name one")
	fs.BoolVar(&o.Minify, "minify", false, "minify the generated XML")
}

// config layers defaults, the config file, the environment and finally any
// flag that was set explicitly.
func (o *buildOptions) config(fs *flag.FlagSet) (*builder.Config, error) {
	c := builder.DefaultConfig()

	if o.ConfigPath != "" {
		var err error

		c, err = builder.ReadConfig(o.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	err := c.LoadEnv(o.EnvFile)
	if err != nil {
		return nil, err
	}

	for name, apply := range map[string]func(){
		"posts":       func() { c.PostsDir = o.PostsDir },
		"output":      func() { c.OutputFile = o.OutputFile },
		"site-url":    func() { c.SiteURL = o.SiteURL },
		"title":       func() { c.SiteTitle = o.Title },
		"description": func() { c.SiteDescription = o.Description },
		"author":      func() { c.DefaultAuthor = o.Author },
		"minify":      func() { c.Minify = o.Minify },
	} {
		if fs.Changed(name) {
			apply()
		}
	}

	return c, nil
}

func newLogger(level string) *glog.BaseLogger {
	options := []glog.Option{glog.WithLoggerTypeConsole()}

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		options = append(options, glog.WithLevel(glog.Debug))
	case "warn", "warning":
		options = append(options, glog.WithLevel(glog.Warn))
	case "error":
		options = append(options, glog.WithLevel(glog.Error))
	default:
		options = append(options, glog.WithLevel(glog.Info))
	}

	return glog.NewLogger(options...)
}
