package commands

import (
	"MyPass/internal/crypto"
	"MyPass/internal/passgen"
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var asBase64 bool
	var file string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random vault key (VAULT_KEY)",
		Long: `Generates 32 random bytes for VAULT_KEY.

Examples:
  vaultctl keygen
  vaultctl keygen --base64
  vaultctl keygen --file /etc/mypass/vault.key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if file != "" {
				if _, err := crypto.LoadOrCreateKeyFile(file); err != nil {
					return err
				}
				success(out, "key file ready: %s", file)
				return nil
			}
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			if asBase64 {
				fmt.Fprintln(out, base64.StdEncoding.EncodeToString(key))
			} else {
				fmt.Fprintln(out, hex.EncodeToString(key))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asBase64, "base64", false, "print base64 instead of hex")
	cmd.Flags().StringVar(&file, "file", "", "create key file (0600) if it does not exist")
	return cmd
}

func newDeriveKeyCmd() *cobra.Command {
	var salt string
	cmd := &cobra.Command{
		Use:   "derive-key",
		Short: "Derive a vault key from a passphrase read from stdin",
		Long: `Reads a passphrase from the first line of stdin and prints the argon2id key
the server derives from VAULT_KEY_PASSPHRASE and VAULT_KEY_SALT.

Example:
  echo "correct horse" | vaultctl derive-key --salt 0123456789`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(salt) < 8 {
				return usageErr(cmd, "--salt must be at least 8 bytes")
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			pass := strings.TrimRight(line, "\r\n")
			if pass == "" {
				if err != nil {
					return fmt.Errorf("read passphrase: %w", err)
				}
				return usageErr(cmd, "empty passphrase")
			}
			key, err := crypto.LoadKey(crypto.KeySource{Passphrase: pass, Salt: salt})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key))
			return nil
		},
	}
	cmd.Flags().StringVar(&salt, "salt", "", "salt (VAULT_KEY_SALT), at least 8 bytes")
	return cmd
}

func newGenpassCmd() *cobra.Command {
	var length int
	var complexity string
	cmd := &cobra.Command{
		Use:   "genpass",
		Short: "Generate a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passgen.Generate(passgen.Options{Length: length, Complexity: passgen.Complexity(complexity)})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pw)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", passgen.DefaultLength, "password length")
	cmd.Flags().StringVarP(&complexity, "complexity", "c", string(passgen.Medium), "low | medium | high")
	return cmd
}
