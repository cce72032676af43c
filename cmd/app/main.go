package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tandem/internal/credentials"
	"tandem/internal/tui"
	"tandem/version"
)

var rootCmd = &cobra.Command{
	Use:   "tandem",
	Short: "Terminal chat interface for a coding agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !credentials.HasAPIKey() {
			if err := firstRunSetup(); err != nil {
				return err
			}
		}
		return tui.Start()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tandem version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get())
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the stored API key",
}

var secretSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the API key in the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := promptAPIKey()
		if err != nil {
			return err
		}
		if err := credentials.SetAPIKey(key); err != nil {
			return fmt.Errorf("store API key: %w", err)
		}
		fmt.Println("API key stored.")
		return nil
	},
}

var secretUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credentials.DeleteAPIKey(); err != nil {
			return fmt.Errorf("remove API key: %w", err)
		}
		fmt.Println("API key removed.")
		return nil
	},
}

func firstRunSetup() error {
	fmt.Println("Welcome to tandem. An API key is needed before chatting.")
	key, err := promptAPIKey()
	if err != nil {
		return err
	}
	if err := credentials.SetAPIKey(key); err != nil {
		return fmt.Errorf("store API key: %w", err)
	}
	return nil
}

func promptAPIKey() (string, error) {
	// Piped input: read the key directly instead of drawing a form.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return "", errors.New("no API key on stdin")
		}
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			return "", errors.New("no API key entered")
		}
		return key, nil
	}

	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&key),
		),
	).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return "", errors.New("cancelled")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("no API key entered")
	}
	return key, nil
}

func main() {
	secretCmd.AddCommand(secretSetCmd, secretUnsetCmd)
	rootCmd.AddCommand(versionCmd, secretCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
