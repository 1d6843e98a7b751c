package aws

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
)

// Clients はAWS設定とサービスクライアントを管理
type Clients struct {
	cfg aws.Config

	// 遅延初期化されるクライアント（serveでは複数のリクエストから参照される）
	cloudFrontOnce sync.Once
	cloudFront     *cloudfront.Client
}

// NewAwsClients は認証情報からAWS設定を読み込んでクライアント管理構造体を作成
func NewAwsClients(ctx context.Context, awsCtx Context) (*Clients, error) {
	cfg, err := LoadAwsConfig(ctx, awsCtx)
	if err != nil {
		return nil, err
	}
	return NewClientsFromConfig(cfg), nil
}

// NewClientsFromConfig は読み込み済みのAWS設定からクライアント管理構造体を作成
func NewClientsFromConfig(cfg aws.Config) *Clients {
	return &Clients{cfg: cfg}
}

// CloudFront は遅延初期化でCloudFrontクライアントを取得
func (c *Clients) CloudFront() *cloudfront.Client {
	c.cloudFrontOnce.Do(func() {
		c.cloudFront = cloudfront.NewFromConfig(c.cfg)
	})
	return c.cloudFront
}

// Region は設定されたリージョンを返す
func (c *Clients) Region() string {
	return c.cfg.Region
}
