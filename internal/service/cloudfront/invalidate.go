package cloudfront

import (
	"cfbot/internal/logger"
	"cfbot/internal/metrics"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Purger はURLから対象ディストリビューションを特定し、1パスの無効化を作成する
type Purger struct {
	index    *DistributionIndex
	provider CdnProvider
	newToken func() string
	log      logger.Logger
	recorder *metrics.Recorder
}

// PurgerOption はPurgerの設定オプション
type PurgerOption func(*Purger)

// WithTokenGenerator はCallerReferenceの生成関数を差し替える
func WithTokenGenerator(fn func() string) PurgerOption {
	return func(p *Purger) { p.newToken = fn }
}

// WithPurgerLogger はLoggerを設定する
func WithPurgerLogger(l logger.Logger) PurgerOption {
	return func(p *Purger) { p.log = l }
}

// WithPurgerMetrics はメトリクスRecorderを設定する
func WithPurgerMetrics(r *metrics.Recorder) PurgerOption {
	return func(p *Purger) { p.recorder = r }
}

// NewPurger はPurgerを作成する。CallerReferenceはデフォルトでUUID v4
func NewPurger(index *DistributionIndex, provider CdnProvider, opts ...PurgerOption) *Purger {
	p := &Purger{
		index:    index,
		provider: provider,
		newToken: uuid.NewString,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseTarget はURLをホスト名と無効化パスに分解します。
// パスとクエリ文字列はそのまま使い、空のパスのみ "/" にします
func ParseTarget(rawURL string) (host, path string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", "", fmt.Errorf("%w: ホスト名がありません: %q", ErrInvalidURL, rawURL)
	}

	path = u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return u.Hostname(), path, nil
}

// Purge はURLに対応するディストリビューションのキャッシュを無効化します。
// ディストリビューションが見つからない場合はエラーではなくFound=falseを返し、APIは呼びません
func (p *Purger) Purge(ctx context.Context, rawURL string) (PurgeResult, error) {
	host, path, err := ParseTarget(rawURL)
	if err != nil {
		p.recorder.ObservePurge(metrics.PurgeInvalidURL)
		return PurgeResult{}, err
	}

	entry, found, err := p.index.LookupHost(ctx, host)
	if err != nil {
		p.recorder.ObservePurge(metrics.PurgeError)
		return PurgeResult{}, err
	}
	if !found {
		p.recorder.ObservePurge(metrics.PurgeNotFound)
		p.log.Info("distribution not found", logger.String("host", host))
		return PurgeResult{Path: path, Hostname: host}, nil
	}

	req := InvalidationRequest{
		DistributionId:  entry.DistributionId,
		Paths:           []string{path},
		CallerReference: p.newToken(),
	}

	ack, err := p.provider.CreateInvalidation(ctx, req)
	if err != nil {
		p.recorder.ObservePurge(metrics.PurgeError)
		return PurgeResult{}, fmt.Errorf("キャッシュ無効化エラー: %w", err)
	}

	p.recorder.ObservePurge(metrics.PurgeStarted)
	p.log.Info("invalidation started",
		logger.String("distribution_id", entry.DistributionId),
		logger.String("host", entry.Hostname),
		logger.String("path", path),
		logger.String("invalidation_id", ack.Id),
		logger.String("caller_reference", req.CallerReference))

	return PurgeResult{
		Found:          true,
		Path:           path,
		Hostname:       entry.Hostname,
		DistributionId: entry.DistributionId,
		InvalidationId: ack.Id,
	}, nil
}

// WaitForInvalidation は無効化が完了するまでintervalごとにステータスを確認して待機します。
// onStatusには確認のたびに現在のステータスが渡されます
func WaitForInvalidation(ctx context.Context, provider CdnProvider, distributionId, invalidationId string, interval time.Duration, onStatus func(status string)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		detail, err := provider.GetInvalidationDetail(ctx, distributionId, invalidationId)
		if err != nil {
			return err
		}

		if onStatus != nil {
			onStatus(detail.Status)
		}
		if detail.Status == CompletedStatus {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
