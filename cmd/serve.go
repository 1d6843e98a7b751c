package cmd

import (
	"cfbot/internal/server"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveAddress string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "チャットコマンドを受け付けるHTTPサーバーを起動",
	Long: `POST /messages で {"body": "..."} を受け取り、チャットコマンドの返信をJSONで返します。
/healthz と /metrics（Prometheus形式）も提供します。

【例】
  ` + AppName + ` serve --address :8080
  curl -XPOST localhost:8080/messages -d '{"body":"cf list distributions"}'`,
	Args: cobra.NoArgs,
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		addr := cfg.Server.Address
		if serveAddress != "" {
			addr = serveAddress
		}

		handler := server.NewHandler(newRouter(), recorder.Handler(), log)
		srv := server.New(addr, handler, log)

		ctx, stop := signal.NotifyContext(cmdCobra.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "待ち受けアドレス（デフォルト: :8080）")
}
