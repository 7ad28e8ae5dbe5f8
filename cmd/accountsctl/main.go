// accountsctl is the operator CLI: keyring generation and ciphertext
// round-trips for key rotation and data migration.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/soundfolio/accounts/internal/config"
	"github.com/soundfolio/accounts/internal/security/tokencipher"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "accountsctl:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "accountsctl",
		Short:         "Operator tooling for the accounts service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config.yaml")

	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Keyring operations",
	}
	keyCmd.AddCommand(&cobra.Command{
		Use:   "gen",
		Short: "Generate a new 32-byte encryption key (base64)",
		RunE: func(*cobra.Command, []string) error {
			raw := make([]byte, 32)
			if _, err := rand.Read(raw); err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(raw))
			return nil
		},
	})

	var provider string

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Encrypt or decrypt stored token values against a configured keyring",
	}
	tokenCmd.PersistentFlags().StringVar(&provider, "provider", "social", "keyring to use: social|scrobble")

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Encrypt a value with the active key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := loadCipher(cfgPath, provider)
			if err != nil {
				return err
			}
			out, err := c.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})
	tokenCmd.AddCommand(&cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Decrypt a stored value with any key in the ring",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := loadCipher(cfgPath, provider)
			if err != nil {
				return err
			}
			out, err := c.Decrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	})

	root.AddCommand(keyCmd, tokenCmd)
	return root
}

func loadCipher(cfgPath, provider string) (*tokencipher.Cipher, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var ring config.Keyring
	switch provider {
	case "social":
		ring = cfg.Crypto.Social
	case "scrobble":
		ring = cfg.Crypto.Scrobble
	default:
		return nil, fmt.Errorf("unknown provider %q (want social or scrobble)", provider)
	}

	return tokencipher.New(ring.ActiveKey, ring.Keys)
}
