// Package commands — команды vaultctl: офлайн-утилиты ключей и паролей
// и клиент HTTP API сервера MyPass.
package commands

import (
	"MyPass/internal/cli/api"
	"MyPass/internal/cli/repo"
	fsrepo "MyPass/internal/cli/repo/fs"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/caarlos0/env/v6"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// options — глобальные флаги; значения по умолчанию берутся из окружения.
type options struct {
	Server    string `env:"MYPASS_SERVER" envDefault:"http://localhost:8080"`
	TokenFile string `env:"MYPASS_TOKEN_FILE"`
}

type app struct {
	opts options
}

func (a *app) store() repo.TokenStore {
	return fsrepo.AuthFSStore{Path: a.opts.TokenFile}
}

// client создаёт API-клиент; authed требует сохранённую сессию.
func (a *app) client(authed bool) (*api.Client, error) {
	if !authed {
		return api.New(a.opts.Server, ""), nil
	}
	tok, err := a.store().Load()
	if err != nil {
		if errors.Is(err, fsrepo.ErrNoToken) {
			return nil, errors.New("not logged in: run 'vaultctl login <email> <password>'")
		}
		return nil, err
	}
	return api.New(a.opts.Server, tok), nil
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan)
)

func success(w io.Writer, format string, args ...any) {
	_, _ = okColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// NewRootCmd собирает дерево команд. Каждый вызов возвращает независимое дерево.
func NewRootCmd() *cobra.Command {
	a := &app{}
	_ = env.Parse(&a.opts)

	root := &cobra.Command{
		Use:   "vaultctl",
		Short: "vaultctl - operator and client CLI for the MyPass vault server",
		Long: `vaultctl manages MyPass vault keys offline and talks to a running server.

Offline commands:
  keygen      Generate a random 32-byte vault key
  derive-key  Derive a vault key from a passphrase (argon2id)
  genpass     Generate a random password

Server commands:
  register, login, logout, status, items, recover, reset`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.opts.Server, "server", a.opts.Server, "MyPass server URL")
	root.PersistentFlags().StringVar(&a.opts.TokenFile, "token-file", a.opts.TokenFile, "session token file (default: user config dir)")

	root.AddCommand(
		newKeygenCmd(),
		newDeriveKeyCmd(),
		newGenpassCmd(),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newItemsCmd(a),
		newRecoverCmd(a),
		newResetCmd(a),
	)
	return root
}

// Execute запускает vaultctl; version выводится флагом --version.
func Execute(ctx context.Context, version string) error {
	root := NewRootCmd()
	root.Version = version
	return root.ExecuteContext(ctx)
}

func usageErr(cmd *cobra.Command, msg string) error {
	return fmt.Errorf("%s\nUsage: %s", msg, cmd.UseLine())
}
