package main

import (
	"fmt"

	"github.com/nao1215/webwatch/internal/cipher"
	"github.com/nao1215/webwatch/internal/config"
	"github.com/spf13/cobra"
)

// NewEncryptCmd creates the encrypt command.
func NewEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt <url>",
		Short: "Encrypt a URL for use in the sites file",
		Long: `Encrypt turns a plaintext URL into the base64 ciphertext stored in the
sites file for entries marked "encrypted": true.

The passphrase is read from the WEBWATCH_SECRET environment variable;
a .env file in the working directory is honored. Every invocation
produces a different ciphertext for the same URL, and any of them
decrypts back to the original.

Examples:
  # Encrypt a URL with the passphrase from the environment
  WEBWATCH_SECRET='my passphrase' webwatch encrypt https://internal.example.com/status

  # Explicitly accept the weak built-in passphrase
  webwatch encrypt --insecure-default-key https://internal.example.com/status`,
		Args: cobra.ExactArgs(1),
		RunE: runEncryptCmd,
	}

	cmd.Flags().Bool("insecure-default-key", false,
		"Allow the built-in fallback passphrase when WEBWATCH_SECRET is unset")

	return cmd
}

// NewDecryptCmd creates the decrypt command.
func NewDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Decrypt an encrypted URL from the sites file",
		Long: `Decrypt recovers the plaintext URL from a ciphertext produced by
'webwatch encrypt'.

The passphrase is read from the WEBWATCH_SECRET environment variable and
must match the one used for encryption; a wrong passphrase or a mangled
ciphertext fails with a non-zero exit code.

Examples:
  WEBWATCH_SECRET='my passphrase' webwatch decrypt 'SGVsbG8gd2...'`,
		Args: cobra.ExactArgs(1),
		RunE: runDecryptCmd,
	}

	cmd.Flags().Bool("insecure-default-key", false,
		"Allow the built-in fallback passphrase when WEBWATCH_SECRET is unset")

	return cmd
}

// runEncryptCmd executes the encrypt command.
func runEncryptCmd(cmd *cobra.Command, args []string) error {
	c, err := cipherFromEnv(cmd)
	if err != nil {
		return err
	}

	encrypted, err := c.Encrypt(args[0])
	if err != nil {
		return fmt.Errorf("failed to encrypt URL: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Encrypted URL: %s\n", encrypted)
	fmt.Fprintln(cmd.OutOrStdout(), `Store it as "url" in sites.json together with "encrypted": true.`)
	return nil
}

// runDecryptCmd executes the decrypt command.
func runDecryptCmd(cmd *cobra.Command, args []string) error {
	c, err := cipherFromEnv(cmd)
	if err != nil {
		return err
	}

	decrypted, err := c.Decrypt(args[0])
	if err != nil {
		return fmt.Errorf("failed to decrypt URL: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Decrypted URL: %s\n", decrypted)
	return nil
}

// cipherFromEnv builds a URLCipher from WEBWATCH_SECRET, or from the
// built-in fallback passphrase when --insecure-default-key was given.
func cipherFromEnv(cmd *cobra.Command) (*cipher.URLCipher, error) {
	passphrase := config.Secret()
	if passphrase == "" {
		insecure, err := cmd.Flags().GetBool("insecure-default-key")
		if err != nil {
			return nil, err
		}
		if !insecure {
			return nil, config.ErrNoPassphrase
		}
		passphrase = cipher.FallbackPassphrase
	}
	return cipher.New(passphrase)
}
