package chat

import (
	cfsvc "cfbot/internal/service/cloudfront"
	"cfbot/internal/service/common"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// CloudFront はチャットコマンドから使うCloudFront操作をまとめたもの
type CloudFront struct {
	Index   *cfsvc.DistributionIndex
	Tracker *cfsvc.InvalidationTracker
	Purger  *cfsvc.Purger
}

// RegisterCloudFront はCloudFront用のコマンドをprefix付きで登録する
func RegisterCloudFront(r *Router, prefix string, cf CloudFront) {
	p := regexp.QuoteMeta(prefix)

	r.On(`(?s)`+p+` list distributions?(?:[ \t]+(?P<pattern>\S+))?`,
		"list_distributions", "List distributions", cf.listDistributions)
	r.On(`(?s)`+p+` list invalidations?`,
		"list_invalidations", "List invalidations", cf.listInvalidations)
	r.On(`(?s)`+p+` (?:inval(?:idate)?|purge) (?P<url>.+?)\z`,
		"purge_url", "Purge path", cf.purgeURL)
	r.On(`(?s)`+p+` refresh\b`,
		"refresh", "Reload distributions", cf.refresh)
}

func (cf CloudFront) listDistributions(ctx context.Context, match map[string]string) (Reply, error) {
	entries, err := cf.Index.Filter(ctx, match["pattern"])
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: RenderDistributions(entries), Code: true}, nil
}

func (cf CloudFront) listInvalidations(ctx context.Context, _ map[string]string) (Reply, error) {
	records, err := cf.Tracker.ListPending(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: RenderInvalidations(records), Code: true}, nil
}

func (cf CloudFront) purgeURL(ctx context.Context, match map[string]string) (Reply, error) {
	result, err := cf.Purger.Purge(ctx, match["url"])
	if errors.Is(err, cfsvc.ErrInvalidURL) {
		return Reply{Text: "Invalid URL: " + strings.TrimSpace(match["url"])}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: RenderPurge(result)}, nil
}

func (cf CloudFront) refresh(ctx context.Context, _ map[string]string) (Reply, error) {
	if err := cf.Index.Refresh(ctx); err != nil {
		return Reply{}, err
	}
	entries, err := cf.Index.AllEntries(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("Refreshed %d hostnames", len(entries))}, nil
}

// RenderDistributions はホスト名・ディストリビューションID・ステータスを列揃えで表示する
func RenderDistributions(entries []cfsvc.PrefixEntry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Hostname, e.DistributionId, e.Status}
	}
	return withCount(fmt.Sprintf("We have %d distributions", len(entries)), common.AlignColumns(rows))
}

// RenderInvalidations は処理中の無効化をパスごとに表示する
func RenderInvalidations(records []cfsvc.InvalidationRecord) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%s : %s / %s", r.Path, r.Status, strings.Join(r.Domains, ", "))
	}
	return withCount(fmt.Sprintf("We have %d invalidations", len(records)), lines)
}

// RenderPurge はパージ結果の返信文を返す
func RenderPurge(result cfsvc.PurgeResult) string {
	if !result.Found {
		return "Distribution not found"
	}
	return fmt.Sprintf("Started %s invalidation of %s / %s", result.Path, result.DistributionId, result.Hostname)
}

func withCount(header string, lines []string) string {
	if len(lines) == 0 {
		return header
	}
	return header + "\n" + strings.Join(lines, "\n")
}
