package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/browser"
	"github.com/xkilldash9x/lantern/internal/config"
	"github.com/xkilldash9x/lantern/internal/network"
	"github.com/xkilldash9x/lantern/internal/observability"
	"github.com/xkilldash9x/lantern/internal/text"
	"github.com/xkilldash9x/lantern/internal/ui"
)

// DefaultLocation is loaded when no URL argument is given.
const DefaultLocation = "http://example.org/index.html"

var (
	cfgFile string
	timing  bool

	// appCfg is populated by PersistentPreRunE and shared by subcommands.
	appCfg config.Interface
)

// rootCmd opens the browser window on the given (or default) location.
var rootCmd = &cobra.Command{
	Use:     "lantern [url]",
	Short:   "Lantern is a minimal web page rendering engine.",
	Args:    cobra.MaximumNArgs(1),
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}

		cfg, err := config.NewConfigFromViper(viper.GetViper())
		if err != nil {
			// Fall back to a working logger so the error is visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "lantern"})
			return fmt.Errorf("failed to load config: %w", err)
		}
		appCfg = cfg

		observability.InitializeLogger(cfg.Logger())
		observability.GetLogger().Info("starting lantern", zap.String("version", Version))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		location := DefaultLocation
		if len(args) == 1 {
			location = args[0]
		}
		appCfg.SetSessionConfig(config.SessionConfig{
			URL:    location,
			Timing: viper.GetBool("timing"),
		})
		return browse(appCfg)
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger := observability.GetLogger(); logger != nil && logger != zap.NewNop() {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./lantern.yaml)")
	rootCmd.Flags().BoolVar(&timing, "timing", false, "exit as soon as the first page is laid out")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// initializeConfig reads the config file and environment. LANTERN_* env
// vars override file values; the timing flag also answers to
// LANTERN_TIMING.
func initializeConfig() error {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName("lantern")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("LANTERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	if f := rootCmd.Flags().Lookup("timing"); f != nil {
		_ = v.BindPFlag("timing", f)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}
	return nil
}

// browse wires the renderer and the window together: the browser loop runs
// on its own goroutine, the fyne shell owns the main one.
func browse(cfg config.Interface) error {
	fonts, err := text.NewSource(cfg.Render())
	if err != nil {
		return fmt.Errorf("loading fonts: %w", err)
	}
	fetcher := network.NewFetcher(cfg.Network())

	updates := make(chan struct{}, 1)
	b := browser.New(fetcher, fonts, browser.Options{
		Timing: cfg.Session().Timing,
		Exit:   os.Exit,
		OnUpdate: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	shell := ui.New(b, fonts, updates)
	shell.Run(ctx, cfg.Session().URL)
	return nil
}
