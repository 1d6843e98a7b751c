package cmd

import (
	"cfbot/internal/chat"
	cfsvc "cfbot/internal/service/cloudfront"
	"cfbot/internal/service/common"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var cf chat.CloudFront
var cfProvider cfsvc.CdnProvider

// CfCmd represents the cf command
var CfCmd = &cobra.Command{
	Use:          "cf",
	Short:        "CloudFrontディストリビューションと無効化の操作コマンド",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 親のPersistentPreRunEを実行（設定とAWS設定読み込み）
		if err := RootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}

		cfProvider = newProvider()
		cf = newCloudFront(cfProvider)
		return nil
	},
}

// cfListCmd represents the list command
var cfListCmd = &cobra.Command{
	Use:   "list",
	Short: "ディストリビューションまたは無効化の一覧を表示",
}

// cfListDistributionsCmd represents the list distributions command
var cfListDistributionsCmd = &cobra.Command{
	Use:     "distributions [pattern]",
	Aliases: []string{"distribution"},
	Short:   "ホスト名ごとのディストリビューション一覧を表示",
	Long: `全ディストリビューションのドメイン名とエイリアスを、ディストリビューションIDとステータスとともに表示します。

【例】
  ` + AppName + ` cf list distributions
  ` + AppName + ` cf list distributions "*.example.com"   # ホスト名をglobパターンで絞り込み`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		pattern := ""
		if len(args) > 0 {
			pattern = args[0]
		}

		entries, err := cf.Index.Filter(cmdCobra.Context(), pattern)
		if err != nil {
			return common.FormatListError("ディストリビューション", err)
		}

		fmt.Fprintln(cmdCobra.OutOrStdout(), chat.RenderDistributions(entries))
		return nil
	},
}

// cfListInvalidationsCmd represents the list invalidations command
var cfListInvalidationsCmd = &cobra.Command{
	Use:     "invalidations",
	Aliases: []string{"invalidation"},
	Short:   "処理中（Completed以外）の無効化をパスごとに表示",
	Args:    cobra.NoArgs,
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		records, err := cf.Tracker.ListPending(cmdCobra.Context())
		if err != nil {
			return common.FormatListError("無効化", err)
		}

		fmt.Fprintln(cmdCobra.OutOrStdout(), chat.RenderInvalidations(records))
		return nil
	},
}

// cfPurgeCmd represents the purge command
var cfPurgeCmd = &cobra.Command{
	Use:     "purge <url>",
	Aliases: []string{"invalidate", "inval"},
	Short:   "URLのパスのキャッシュを無効化",
	Long: `URLのホスト名からディストリビューションを特定し、URLのパス1件のキャッシュを無効化します。

【例】
  ` + AppName + ` cf purge https://example.com/images/logo.png
  ` + AppName + ` cf purge https://example.com/index.html -w   # 完了まで待機`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmdCobra *cobra.Command, args []string) error {
		wait, _ := cmdCobra.Flags().GetBool("wait")

		result, err := cf.Purger.Purge(cmdCobra.Context(), args[0])
		if errors.Is(err, cfsvc.ErrInvalidURL) {
			return fmt.Errorf("❌ 無効なURLです: %w", err)
		}
		if err != nil {
			return common.FormatCreateError("無効化", err)
		}

		fmt.Fprintln(cmdCobra.OutOrStdout(), chat.RenderPurge(result))
		if !result.Found {
			return nil
		}
		fmt.Fprintf(cmdCobra.OutOrStdout(), "%s 無効化ID: %s\n", common.SuccessIcon, result.InvalidationId)

		if wait {
			if err := waitForInvalidation(cmdCobra, result); err != nil {
				return common.FormatWaitError("無効化", err)
			}
			fmt.Fprintf(cmdCobra.OutOrStdout(), "%s キャッシュ無効化が完了しました\n", common.SuccessIcon)
		}
		return nil
	},
}

// waitForInvalidation はスピナーを表示しながら無効化の完了を待つ。Ctrl+Cで中断できる
func waitForInvalidation(cmdCobra *cobra.Command, result cfsvc.PurgeResult) error {
	ctx, stop := signal.NotifyContext(cmdCobra.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription(common.WaitIcon+" 無効化の完了を待機中..."),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	defer bar.Finish()

	return cfsvc.WaitForInvalidation(ctx, cfProvider, result.DistributionId, result.InvalidationId,
		cfg.Invalidation.WaitInterval,
		func(status string) {
			bar.Describe(fmt.Sprintf("%s 現在のステータス: %s", common.WaitIcon, status))
			_ = bar.Add(1)
		})
}

func init() {
	RootCmd.AddCommand(CfCmd)
	CfCmd.AddCommand(cfListCmd)
	CfCmd.AddCommand(cfPurgeCmd)

	cfListCmd.AddCommand(cfListDistributionsCmd)
	cfListCmd.AddCommand(cfListInvalidationsCmd)

	cfPurgeCmd.Flags().BoolP("wait", "w", false, "無効化完了まで待機")
}
