package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"propertystore/internal/client"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Sign in and keep the token in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asClient, _ := cmd.Flags().GetBool("client")

		username := ""
		if len(args) == 1 {
			username = args[0]
		} else {
			label := "Username: "
			if asClient {
				label = "Phone: "
			}
			var err error
			if username, err = promptLine(label); err != nil {
				return err
			}
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		var st client.State
		if asClient {
			st, err = session.ClientLogin(ctx, username, password)
		} else {
			st, err = session.Login(ctx, username, password)
		}
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("invalid username or password")
		}
		if err != nil {
			return err
		}

		if st.Client != nil {
			fmt.Printf("Logged in as %s\n", st.Client.Name)
		} else {
			fmt.Printf("Logged in as %s (%s)\n", st.Username, st.Role)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().Bool("client", false, "sign in to the client portal with phone and password")
}

var stdin = bufio.NewReader(os.Stdin)

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a terminal and a plain line otherwise.
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
