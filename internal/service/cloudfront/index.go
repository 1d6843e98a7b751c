package cloudfront

import (
	"cfbot/internal/logger"
	"cfbot/internal/metrics"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/singleflight"
)

// DistributionIndex はホスト名（ドメイン名と全エイリアス）からディストリビューションを引くための表。
// 初回利用時に一度だけ構築し、Refreshされるまで使い回す
type DistributionIndex struct {
	provider CdnProvider
	log      logger.Logger
	recorder *metrics.Recorder

	// 同時に複数のコマンドが来ても一覧取得は1回にまとめる
	group singleflight.Group

	mu      sync.RWMutex
	built   bool
	entries []PrefixEntry
	byHost  map[string]PrefixEntry

	// 一覧取得の開始順の番号。古い取得結果で新しい表を上書きしない
	started uint64
	applied uint64
}

// IndexOption はDistributionIndexの設定オプション
type IndexOption func(*DistributionIndex)

// WithIndexLogger はLoggerを設定する
func WithIndexLogger(l logger.Logger) IndexOption {
	return func(idx *DistributionIndex) { idx.log = l }
}

// WithIndexMetrics はメトリクスRecorderを設定する
func WithIndexMetrics(r *metrics.Recorder) IndexOption {
	return func(idx *DistributionIndex) { idx.recorder = r }
}

// NewDistributionIndex は未構築のDistributionIndexを作成する
func NewDistributionIndex(provider CdnProvider, opts ...IndexOption) *DistributionIndex {
	idx := &DistributionIndex{
		provider: provider,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build は未構築の場合のみディストリビューション一覧を取得して表を構築する。
// 失敗した場合は未構築のまま残るので、次回呼び出しで再試行される
func (idx *DistributionIndex) Build(ctx context.Context) error {
	if idx.isBuilt() {
		return nil
	}
	return idx.load(ctx, "build")
}

// Refresh は構築済みかどうかに関わらず表を作り直す。失敗時は既存の表を保持する
func (idx *DistributionIndex) Refresh(ctx context.Context) error {
	return idx.load(ctx, "refresh")
}

func (idx *DistributionIndex) isBuilt() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.built
}

// load は一覧取得を同じキーの呼び出し間で共有する。共有中の取得は呼び出し元のキャンセルでは止めず
// （タイムアウトはプロバイダー側で適用）、各呼び出し元は自分のctxが終わった時点で戻る
func (idx *DistributionIndex) load(ctx context.Context, key string) error {
	shared := context.WithoutCancel(ctx)
	ch := idx.group.DoChan(key, func() (interface{}, error) {
		if key == "build" && idx.isBuilt() {
			return nil, nil
		}

		idx.mu.Lock()
		idx.started++
		seq := idx.started
		idx.mu.Unlock()

		distributions, err := idx.provider.ListDistributions(shared)
		if err != nil {
			return nil, fmt.Errorf("ディストリビューション一覧の取得に失敗: %w", err)
		}

		entries, byHost := buildEntries(distributions)

		idx.mu.Lock()
		if seq < idx.applied {
			idx.mu.Unlock()
			idx.log.Debug("stale distribution listing discarded", logger.String("trigger", key))
			return nil, nil
		}
		idx.entries = entries
		idx.byHost = byHost
		idx.built = true
		idx.applied = seq
		idx.mu.Unlock()

		idx.recorder.SetIndexEntries(len(entries))
		idx.log.Info("distribution index built",
			logger.String("trigger", key),
			logger.Int("distributions", len(distributions)),
			logger.Int("hostnames", len(entries)))
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildEntries はディストリビューションごとにドメイン名1行とエイリアスごとに1行を作る。
// ホスト名が重複した場合は最初に現れたものを検索対象にする
func buildEntries(distributions []Distribution) ([]PrefixEntry, map[string]PrefixEntry) {
	entries := make([]PrefixEntry, 0, len(distributions))
	byHost := make(map[string]PrefixEntry, len(distributions))

	add := func(host string, dist Distribution) {
		entry := PrefixEntry{
			Hostname:       host,
			DistributionId: dist.Id,
			Status:         dist.Status,
		}
		entries = append(entries, entry)
		if _, exists := byHost[host]; !exists {
			byHost[host] = entry
		}
	}

	for _, dist := range distributions {
		add(dist.DomainName, dist)
		for _, alias := range dist.Aliases {
			add(alias, dist)
		}
	}
	return entries, byHost
}

// LookupHost はホスト名に完全一致するエントリを返す。見つからない場合はfound=false
func (idx *DistributionIndex) LookupHost(ctx context.Context, hostname string) (PrefixEntry, bool, error) {
	if err := idx.Build(ctx); err != nil {
		return PrefixEntry{}, false, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entry, ok := idx.byHost[hostname]
	return entry, ok, nil
}

// AllEntries は全エントリをプロバイダーが返した順で返す
func (idx *DistributionIndex) AllEntries(ctx context.Context) ([]PrefixEntry, error) {
	if err := idx.Build(ctx); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]PrefixEntry, len(idx.entries))
	copy(out, idx.entries)
	return out, nil
}

// Filter はホスト名がパターンに一致するエントリを返す。空パターンは全件。
// ワイルドカード（* ? [ {）を含む場合はglob形式（* はドットを越えない）、含まない場合は部分一致で判定する
func (idx *DistributionIndex) Filter(ctx context.Context, pattern string) ([]PrefixEntry, error) {
	entries, err := idx.AllEntries(ctx)
	if err != nil || pattern == "" {
		return entries, err
	}

	match := func(hostname string) bool { return strings.Contains(hostname, pattern) }
	if strings.ContainsAny(pattern, "*?[{") {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("無効なパターン %q: %w", pattern, err)
		}
		match = g.Match
	}

	var matched []PrefixEntry
	for _, entry := range entries {
		if match(entry.Hostname) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// DistinctDistributionIds はディストリビューションIDを重複なく、最初に現れた順で返す
func (idx *DistributionIndex) DistinctDistributionIds(ctx context.Context) ([]string, error) {
	entries, err := idx.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, entry := range entries {
		if seen[entry.DistributionId] {
			continue
		}
		seen[entry.DistributionId] = true
		ids = append(ids, entry.DistributionId)
	}
	return ids, nil
}

// HostsForDistribution はディストリビューションに属するホスト名を返す
func (idx *DistributionIndex) HostsForDistribution(ctx context.Context, distributionId string) ([]string, error) {
	entries, err := idx.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	var hosts []string
	for _, entry := range entries {
		if entry.DistributionId == distributionId {
			hosts = append(hosts, entry.Hostname)
		}
	}
	return hosts, nil
}
