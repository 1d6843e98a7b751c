package cmd

import (
	awsinternal "cfbot/internal/aws"
	"cfbot/internal/config"
	"cfbot/internal/logger"
	"cfbot/internal/metrics"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// AppName はコマンド名
const AppName = "cfbot"

var region string
var profile string
var configFile string
var logLevel string

// コマンド実行前に初期化される共通の依存関係
var (
	cfg        config.Config
	log        logger.Logger
	recorder   *metrics.Recorder
	awsClients *awsinternal.Clients
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "CloudFrontディストリビューションの参照とキャッシュ無効化を行うチャットボット",
	Long: `CloudFrontのディストリビューション一覧、処理中の無効化一覧の表示と、
URLを指定したキャッシュ無効化を行います。

チャットとして使う場合は shell（標準入力）または serve（HTTP）を起動し、
次のメッセージを送信します:
  cf list distributions
  cf list invalidations
  cf purge https://example.com/path`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&region, "region", "R", "", "AWSリージョン（デフォルト: us-east-1）")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "AWSプロファイル")
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "設定ファイル（YAML）")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ログレベル（debug, info, warn, error）")

	// コマンド実行前に共通で設定の読み込みとAWSクライアントの準備を行う
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// ヘルプ・バージョン表示の場合はスキップ
		if cmd.Name() == "help" || cmd.Name() == versionCmd.Name() {
			return nil
		}
		return setup(cmd)
	}
}

// setup は設定・ロガー・メトリクス・AWSクライアントを初期化する
func setup(cmd *cobra.Command) error {
	loaded, err := config.NewLoader(config.EnvPrefix, configFile).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("❌ 設定の読み込みに失敗: %w", err)
	}
	cfg = applyFlags(loaded)

	log, err = logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return fmt.Errorf("❌ ロガーの初期化に失敗: %w", err)
	}
	recorder = metrics.NewRecorder(nil)

	resolveProfile(cmd)

	awsClients, err = awsinternal.NewAwsClients(cmd.Context(), awsinternal.Context{
		Profile: cfg.AWS.Profile,
		Region:  cfg.AWS.Region,
	})
	if err != nil {
		return fmt.Errorf("❌ AWS設定の読み込みに失敗: %w", err)
	}
	log.Debug("aws config loaded",
		logger.String("region", awsClients.Region()),
		logger.String("profile", cfg.AWS.Profile))
	return nil
}

// applyFlags はコマンドラインで指定された値で設定を上書きする
func applyFlags(c config.Config) config.Config {
	if region != "" {
		c.AWS.Region = region
	}
	if profile != "" {
		c.AWS.Profile = profile
	}
	if logger.ValidLevel(logLevel) {
		c.Log.Level = logLevel
	}
	return c
}
