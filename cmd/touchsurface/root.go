package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version info.
	version = "0.1.0"
	build   = "dev"

	// Global flags.
	verbose    bool
	configPath string
	sessCfg    SessionConfig

	// Color scheme.
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	grayColor    = color.New(color.FgHiBlack)
	cmdColor     = color.New(color.FgGreen)
)

var rootCmd = &cobra.Command{
	Use:   "touchsurface",
	Short: "Depth-sensor touch-surface detection",
	Long:  getBanner(),
	Run: func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("touchsurface v%s (build: %s)\n", version, build)
			return
		}

		if !isInteractiveTTY() {
			fmt.Print(getBanner())
			return
		}
		if err := startInteractiveMode(); err != nil {
			errorColor.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// isInteractiveTTY checks if we're running in an interactive terminal.
func isInteractiveTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Execute runs the root command.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Fprint(c.OutOrStderr(), getColoredUsage(c))
		return nil
	})
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for command")
	rootCmd.PersistentFlags().Bool("version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Session defaults file (YAML)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		logrus.SetOutput(os.Stderr)
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: false,
			FullTimestamp: true,
		})

		cfg, err := loadSessionConfig(configPath)
		if err != nil {
			return err
		}
		sessCfg = cfg
		return nil
	}

	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(diagnoseCmd)
}

func getBanner() string {
	banner := infoColor.Sprint("touchsurface") + grayColor.Sprintf(" v%s\n", version)
	banner += grayColor.Sprint("Depth-sensor touch-surface detection and calibration\n\n")
	banner += warnColor.Sprint("Run a subcommand (detect, calibrate, diagnose) or start a TTY for the interactive shell.\n")
	return banner
}

// getColoredUsage generates the custom colored usage text. Cobra
// looks this up via the command tree's parent chain, so setting it
// once on rootCmd in Execute covers every subcommand too.
func getColoredUsage(c *cobra.Command) string {
	var b strings.Builder

	if c.HasAvailableSubCommands() || c.HasAvailableFlags() {
		b.WriteString("\nUsage:\n")
		b.WriteString("  " + c.UseLine() + "\n")
	}

	if c.HasAvailableSubCommands() {
		b.WriteString(cmdColor.Sprint("\nCommands:\n"))
		for _, sub := range c.Commands() {
			if !sub.Hidden && sub.IsAvailableCommand() {
				b.WriteString(fmt.Sprintf("  %s  %s\n",
					cmdColor.Sprintf("%-15s", sub.Name()), sub.Short))
			}
		}
	}

	if c.HasAvailableLocalFlags() {
		b.WriteString("\nFlags:\n")
		b.WriteString(c.LocalFlags().FlagUsages())
	}

	if c.HasAvailableInheritedFlags() {
		b.WriteString("\nGlobal Flags:\n")
		b.WriteString(c.InheritedFlags().FlagUsages())
	}

	b.WriteString("\nUse \"" + c.CommandPath() + " [command] --help\" for more information about a command.\n")
	return b.String()
}
