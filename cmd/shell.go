package cmd

import (
	"bufio"
	"cfbot/internal/chat"
	"cfbot/internal/service/common"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "標準入力からチャットコマンドを受け付ける対話シェルを起動",
	Long: `1行を1メッセージとしてチャットコマンドを実行します。exit または quit で終了します。

【例】
  ` + AppName + ` shell
  > cf list distributions
  > cf purge https://example.com/index.html`,
	Args: cobra.NoArgs,
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		router := newRouter()
		printCommands(cmdCobra.OutOrStdout(), router.Commands())
		return runShell(cmdCobra.Context(), cmdCobra.InOrStdin(), cmdCobra.OutOrStdout(), router)
	},
}

// dispatcher はメッセージを処理するチャットルーター
type dispatcher interface {
	Dispatch(ctx context.Context, body string) (chat.Reply, bool)
}

// runShell は入力が終わるまで1行ずつメッセージを処理する
func runShell(ctx context.Context, in io.Reader, out io.Writer, d dispatcher) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		default:
			reply, ok := d.Dispatch(ctx, line)
			if ok {
				fmt.Fprintln(out, reply.Text)
			} else {
				fmt.Fprintf(out, "%s 不明なコマンドです: %s\n", common.WarningIcon, line)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func printCommands(out io.Writer, cmds []chat.Command) {
	fmt.Fprintf(out, "%s 利用可能なコマンド:\n", common.InfoIcon)
	for _, c := range cmds {
		fmt.Fprintf(out, "  %-20s %s\n", c.Name, c.Description)
	}
}

func init() {
	RootCmd.AddCommand(shellCmd)
}
