package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in to the API and store the token pair in the data folder.

Examples:
  dashboard login --email admin@example.com --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if password == "" {
			return fmt.Errorf("--password is required")
		}

		c, err := newConsole()
		if err != nil {
			return err
		}

		fmt.Printf("Signing in as: %s\n", email)
		profile, err := c.client.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		green := color.New(color.FgGreen)
		if profile != nil {
			green.Printf("Signed in as %s (%s)\n", profile.DisplayName(), profile.Role)
		} else {
			green.Println("Signed in")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole()
		if err != nil {
			return err
		}
		c.client.Logout()
		fmt.Println("Signed out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Restore the stored session the same way the web console does on start-up
and show who is signed in. A stored session the API no longer accepts is
removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConsole()
		if err != nil {
			return err
		}
		c.gate.Initialize(cmd.Context(), c.store, c.client)

		cyan := color.New(color.FgCyan)
		gray := color.New(color.FgHiBlack)

		cyan.Printf("API:     ")
		fmt.Println(c.config.GetAPIURL())

		state := c.session.Snapshot()
		if !state.IsAuthenticated {
			cyan.Printf("Session: ")
			color.New(color.FgYellow).Println("signed out")
			return nil
		}

		cyan.Printf("Session: ")
		color.New(color.FgGreen).Println("signed in")
		if state.User != nil {
			cyan.Printf("User:    ")
			fmt.Printf("%s <%s> %s\n", state.User.DisplayName(), state.User.Email, state.User.Role)
		}

		if tok, err := c.client.TokenSource().Token(); err == nil && !tok.Expiry.IsZero() {
			cyan.Printf("Expires: ")
			fmt.Print(tok.Expiry.Local().Format(time.RFC1123))
			gray.Printf(" (%s)\n", time.Until(tok.Expiry).Round(time.Second))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
}
