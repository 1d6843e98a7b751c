package cloudfront

import (
	"cfbot/internal/logger"
	"cfbot/internal/metrics"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
)

// CdnProvider はCloudFrontへの読み書き操作を抽象化したインターフェース。
// 失敗はすべてErrProviderUnavailableでラップして返す
type CdnProvider interface {
	ListDistributions(ctx context.Context) ([]Distribution, error)
	ListInvalidations(ctx context.Context, distributionId string) ([]InvalidationSummary, error)
	GetInvalidationDetail(ctx context.Context, distributionId, invalidationId string) (InvalidationDetail, error)
	CreateInvalidation(ctx context.Context, req InvalidationRequest) (InvalidationAck, error)
}

// API は*cloudfront.Clientのうち使用するメソッドだけを切り出したもの
type API interface {
	ListDistributions(ctx context.Context, params *cloudfront.ListDistributionsInput, optFns ...func(*cloudfront.Options)) (*cloudfront.ListDistributionsOutput, error)
	ListInvalidations(ctx context.Context, params *cloudfront.ListInvalidationsInput, optFns ...func(*cloudfront.Options)) (*cloudfront.ListInvalidationsOutput, error)
	GetInvalidation(ctx context.Context, params *cloudfront.GetInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.GetInvalidationOutput, error)
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// SdkProvider はaws-sdk-go-v2のCloudFrontクライアントを使ったCdnProviderの実装
type SdkProvider struct {
	client   API
	timeout  time.Duration
	log      logger.Logger
	recorder *metrics.Recorder
}

// ProviderOption はSdkProviderの設定オプション
type ProviderOption func(*SdkProvider)

// WithTimeout は1回のAPI呼び出しごとのタイムアウトを設定する（0で無効）
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *SdkProvider) { p.timeout = d }
}

// WithProviderLogger はLoggerを設定する
func WithProviderLogger(l logger.Logger) ProviderOption {
	return func(p *SdkProvider) { p.log = l }
}

// WithProviderMetrics はメトリクスRecorderを設定する
func WithProviderMetrics(r *metrics.Recorder) ProviderOption {
	return func(p *SdkProvider) { p.recorder = r }
}

// NewSdkProvider はSdkProviderを作成する
func NewSdkProvider(client API, opts ...ProviderOption) *SdkProvider {
	p := &SdkProvider{
		client: client,
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// call はタイムアウト・ログ・メトリクスを共通で適用してAPIを呼び出す
func (p *SdkProvider) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		p.recorder.ObserveProviderCall(operation, metrics.CallResultError, elapsed)
		p.log.Error("cloudfront api call failed",
			logger.String("operation", operation),
			logger.String("code", ErrorCode(err)),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, operation, err)
	}

	p.recorder.ObserveProviderCall(operation, metrics.CallResultSuccess, elapsed)
	p.log.Debug("cloudfront api call",
		logger.String("operation", operation),
		logger.Duration("elapsed", elapsed))
	return nil
}

// ListDistributions は全ディストリビューションをページングしながら取得します
func (p *SdkProvider) ListDistributions(ctx context.Context) ([]Distribution, error) {
	var distributions []Distribution
	var marker *string

	for {
		var result *cloudfront.ListDistributionsOutput
		err := p.call(ctx, "ListDistributions", func(ctx context.Context) error {
			var err error
			result, err = p.client.ListDistributions(ctx, &cloudfront.ListDistributionsInput{Marker: marker})
			return err
		})
		if err != nil {
			return nil, err
		}

		list := result.DistributionList
		if list == nil {
			break
		}
		for _, item := range list.Items {
			distributions = append(distributions, toDistribution(item))
		}

		if !aws.ToBool(list.IsTruncated) || aws.ToString(list.NextMarker) == "" {
			break
		}
		marker = list.NextMarker
	}

	return distributions, nil
}

// ListInvalidations はディストリビューションの無効化一覧を取得します
func (p *SdkProvider) ListInvalidations(ctx context.Context, distributionId string) ([]InvalidationSummary, error) {
	var invalidations []InvalidationSummary
	var marker *string

	for {
		var result *cloudfront.ListInvalidationsOutput
		err := p.call(ctx, "ListInvalidations", func(ctx context.Context) error {
			var err error
			result, err = p.client.ListInvalidations(ctx, &cloudfront.ListInvalidationsInput{
				DistributionId: aws.String(distributionId),
				Marker:         marker,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		list := result.InvalidationList
		if list == nil {
			break
		}
		for _, item := range list.Items {
			invalidations = append(invalidations, InvalidationSummary{
				Id:     aws.ToString(item.Id),
				Status: aws.ToString(item.Status),
			})
		}

		if !aws.ToBool(list.IsTruncated) || aws.ToString(list.NextMarker) == "" {
			break
		}
		marker = list.NextMarker
	}

	return invalidations, nil
}

// GetInvalidationDetail は無効化の対象パスとステータスを取得します
func (p *SdkProvider) GetInvalidationDetail(ctx context.Context, distributionId, invalidationId string) (InvalidationDetail, error) {
	var result *cloudfront.GetInvalidationOutput
	err := p.call(ctx, "GetInvalidation", func(ctx context.Context) error {
		var err error
		result, err = p.client.GetInvalidation(ctx, &cloudfront.GetInvalidationInput{
			DistributionId: aws.String(distributionId),
			Id:             aws.String(invalidationId),
		})
		return err
	})
	if err != nil {
		return InvalidationDetail{}, err
	}

	detail := InvalidationDetail{Id: invalidationId}
	if inv := result.Invalidation; inv != nil {
		detail.Status = aws.ToString(inv.Status)
		if inv.InvalidationBatch != nil && inv.InvalidationBatch.Paths != nil {
			detail.Paths = append(detail.Paths, inv.InvalidationBatch.Paths.Items...)
		}
	}
	return detail, nil
}

// CreateInvalidation は無効化リクエストを送信します
func (p *SdkProvider) CreateInvalidation(ctx context.Context, req InvalidationRequest) (InvalidationAck, error) {
	input := &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(req.DistributionId),
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: aws.String(req.CallerReference),
			Paths: &types.Paths{
				Quantity: aws.Int32(int32(len(req.Paths))),
				Items:    req.Paths,
			},
		},
	}

	var result *cloudfront.CreateInvalidationOutput
	err := p.call(ctx, "CreateInvalidation", func(ctx context.Context) error {
		var err error
		result, err = p.client.CreateInvalidation(ctx, input)
		return err
	})
	if err != nil {
		return InvalidationAck{}, err
	}

	var ack InvalidationAck
	if result.Invalidation != nil {
		ack.Id = aws.ToString(result.Invalidation.Id)
		ack.Status = aws.ToString(result.Invalidation.Status)
	}
	return ack, nil
}

func toDistribution(item types.DistributionSummary) Distribution {
	dist := Distribution{
		Id:         aws.ToString(item.Id),
		DomainName: aws.ToString(item.DomainName),
		Status:     aws.ToString(item.Status),
	}
	if item.Aliases != nil {
		dist.Aliases = append(dist.Aliases, item.Aliases.Items...)
	}
	return dist
}
