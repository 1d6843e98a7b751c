package cloudfront

import (
	"context"
	"fmt"
)

// InvalidationTracker は全ディストリビューションの処理中の無効化を集める
type InvalidationTracker struct {
	index    *DistributionIndex
	provider CdnProvider
}

// NewInvalidationTracker はInvalidationTrackerを作成する
func NewInvalidationTracker(index *DistributionIndex, provider CdnProvider) *InvalidationTracker {
	return &InvalidationTracker{index: index, provider: provider}
}

// ListPending は完了していない無効化を対象パスごとに1件として返します。
// ディストリビューションは1件ずつ順番に問い合わせ、途中で失敗した場合は全体を失敗にします
func (t *InvalidationTracker) ListPending(ctx context.Context) ([]InvalidationRecord, error) {
	ids, err := t.index.DistinctDistributionIds(ctx)
	if err != nil {
		return nil, err
	}

	var records []InvalidationRecord
	for _, id := range ids {
		invalidations, err := t.provider.ListInvalidations(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("ディストリビューション %s の無効化一覧の取得に失敗: %w", id, err)
		}

		domains, err := t.index.HostsForDistribution(ctx, id)
		if err != nil {
			return nil, err
		}

		for _, inv := range invalidations {
			if inv.Status == CompletedStatus {
				continue
			}

			detail, err := t.provider.GetInvalidationDetail(ctx, id, inv.Id)
			if err != nil {
				return nil, fmt.Errorf("無効化 %s の詳細取得に失敗: %w", inv.Id, err)
			}

			for _, path := range detail.Paths {
				records = append(records, InvalidationRecord{
					Path:           path,
					Status:         inv.Status,
					DistributionId: id,
					Domains:        domains,
				})
			}
		}
	}

	return records, nil
}
