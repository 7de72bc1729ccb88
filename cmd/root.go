package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/stacker/internal/ansi"
	"github.com/papapumpkin/stacker/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "stacker",
	Short: "Manage trees of stacked git branches",
	Long: "Stacker tracks a parent and a base revision for each of your branches, " +
		"so a tree of dependent branches can be rebased, diffed and landed one level at a time.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command, exiting non-zero on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.New(ansi.Enabled(viper.GetString("color"), os.Stderr)).Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .stacker.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every git and arc invocation")
	rootCmd.PersistentFlags().StringP("work-dir", "C", "", "run as if started in this directory")
	rootCmd.PersistentFlags().String("color", "", "color output: auto, always or never")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("work_dir", rootCmd.PersistentFlags().Lookup("work-dir"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".stacker")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("STACKER")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// setupLogging configures the global zerolog logger. Only warnings are shown
// unless verbose is set, in which case every external command is logged.
func setupLogging(cmd *cobra.Command, args []string) error {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !ansi.Enabled(viper.GetString("color"), os.Stderr),
		TimeFormat: "15:04:05",
	}
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return nil
}
