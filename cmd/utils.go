package cmd

import (
	"cfbot/internal/chat"
	cfsvc "cfbot/internal/service/cloudfront"
	"cfbot/internal/service/common"
	"os"

	"github.com/spf13/cobra"
)

// resolveProfile はプロファイル未指定の場合に環境変数 AWS_PROFILE を使う。
// どちらもなければSDKのデフォルト認証情報チェーン（環境変数・IAMロール）に任せる
func resolveProfile(cmd *cobra.Command) {
	if cfg.AWS.Profile != "" {
		return
	}
	envProfile := os.Getenv("AWS_PROFILE")
	if envProfile == "" {
		return
	}
	cfg.AWS.Profile = envProfile
	cmd.PrintErrln(common.SearchIcon + " 環境変数 AWS_PROFILE の値 '" + envProfile + "' を使用します")
}

// newProvider はCloudFront APIを呼び出すCdnProviderを作成する
func newProvider() *cfsvc.SdkProvider {
	return cfsvc.NewSdkProvider(awsClients.CloudFront(),
		cfsvc.WithTimeout(cfg.Provider.Timeout),
		cfsvc.WithProviderLogger(log),
		cfsvc.WithProviderMetrics(recorder),
	)
}

// newCloudFront はインデックス・無効化一覧・パージの各サービスを組み立てる。
// インデックスは返されたサービス間で共有される
func newCloudFront(provider cfsvc.CdnProvider) chat.CloudFront {
	index := cfsvc.NewDistributionIndex(provider,
		cfsvc.WithIndexLogger(log),
		cfsvc.WithIndexMetrics(recorder),
	)
	return chat.CloudFront{
		Index:   index,
		Tracker: cfsvc.NewInvalidationTracker(index, provider),
		Purger: cfsvc.NewPurger(index, provider,
			cfsvc.WithPurgerLogger(log),
			cfsvc.WithPurgerMetrics(recorder),
		),
	}
}

// newRouter はCloudFrontコマンドを登録したチャットルーターを作成する
func newRouter() *chat.Router {
	router := chat.NewRouter(log)
	chat.RegisterCloudFront(router, cfg.Chat.Prefix, newCloudFront(newProvider()))
	return router
}
