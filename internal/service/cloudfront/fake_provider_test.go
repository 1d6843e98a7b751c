package cloudfront

import (
	"context"
	"fmt"
	"sync"
)

// fakeProvider はテスト用のCdnProvider。呼び出しを記録する
type fakeProvider struct {
	mu sync.Mutex

	distributions []Distribution
	invalidations map[string][]InvalidationSummary
	details       map[string]InvalidationDetail // key: distId + "/" + invId

	listDistErr  error
	listInvErr   map[string]error
	createErr    error
	detailStatus []string // WaitForInvalidation用に順番に返すステータス

	listDistCalls int
	listInvCalls  []string
	detailCalls   []string
	created       []InvalidationRequest
}

func newFakeProvider(distributions ...Distribution) *fakeProvider {
	return &fakeProvider{
		distributions: distributions,
		invalidations: map[string][]InvalidationSummary{},
		details:       map[string]InvalidationDetail{},
		listInvErr:    map[string]error{},
	}
}

func (f *fakeProvider) ListDistributions(ctx context.Context) ([]Distribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listDistCalls++
	if f.listDistErr != nil {
		return nil, fmt.Errorf("%w: ListDistributions: %w", ErrProviderUnavailable, f.listDistErr)
	}
	return f.distributions, nil
}

func (f *fakeProvider) ListInvalidations(ctx context.Context, distributionId string) ([]InvalidationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listInvCalls = append(f.listInvCalls, distributionId)
	if err := f.listInvErr[distributionId]; err != nil {
		return nil, fmt.Errorf("%w: ListInvalidations: %w", ErrProviderUnavailable, err)
	}
	return f.invalidations[distributionId], nil
}

func (f *fakeProvider) GetInvalidationDetail(ctx context.Context, distributionId, invalidationId string) (InvalidationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := distributionId + "/" + invalidationId
	f.detailCalls = append(f.detailCalls, key)
	if len(f.detailStatus) > 0 {
		status := f.detailStatus[0]
		f.detailStatus = f.detailStatus[1:]
		return InvalidationDetail{Id: invalidationId, Status: status}, nil
	}
	return f.details[key], nil
}

func (f *fakeProvider) CreateInvalidation(ctx context.Context, req InvalidationRequest) (InvalidationAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return InvalidationAck{}, fmt.Errorf("%w: CreateInvalidation: %w", ErrProviderUnavailable, f.createErr)
	}
	f.created = append(f.created, req)
	return InvalidationAck{Id: fmt.Sprintf("I%d", len(f.created)), Status: "InProgress"}, nil
}

func sampleDistributions() []Distribution {
	return []Distribution{
		{Id: "DIST1", DomainName: "d111.cloudfront.net", Aliases: []string{"example.com", "www.example.com"}, Status: "Deployed"},
		{Id: "DIST2", DomainName: "d222.cloudfront.net", Status: "InProgress"},
		{Id: "DIST3", DomainName: "d333.cloudfront.net", Aliases: []string{"static.example.org"}, Status: "Deployed"},
	}
}

// gatedProvider はListDistributionsの応答をテスト側から1件ずつ返すCdnProvider。
// 呼び出しごとに応答用チャネルをcallsへ送り、値が届くまでブロックする
type gatedProvider struct {
	fakeProvider
	calls chan chan []Distribution

	mu        sync.Mutex
	listCalls int
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{calls: make(chan chan []Distribution)}
}

func (g *gatedProvider) ListDistributions(ctx context.Context) ([]Distribution, error) {
	g.mu.Lock()
	g.listCalls++
	g.mu.Unlock()

	reply := make(chan []Distribution)
	g.calls <- reply
	select {
	case d := <-reply:
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedProvider) listCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listCalls
}
