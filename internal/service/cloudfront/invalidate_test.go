package cloudfront

import (
	"cfbot/internal/metrics"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PurgerSuite struct {
	suite.Suite
	provider *fakeProvider
	index    *DistributionIndex
	recorder *metrics.Recorder
	purger   *Purger
}

func TestPurgerSuite(t *testing.T) {
	suite.Run(t, new(PurgerSuite))
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		host string
		path string
	}{
		{"root", "https://example.com/", "example.com", "/"},
		{"empty path", "https://example.com", "example.com", "/"},
		{"encoded slash", "https://example.com/a%2Fb", "example.com", "/a%2Fb"},
		{"encoded tilde", "https://example.com/%7Efoo", "example.com", "/%7Efoo"},
		{"trailing slash", "https://example.com/dir/", "example.com", "/dir/"},
		{"port", "https://example.com:8443/x", "example.com", "/x"},
		{"query", "https://example.com/a?v=2&b=%20", "example.com", "/a?v=2&b=%20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := ParseTarget(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.path, path)
		})
	}
}

func (s *PurgerSuite) SetupTest() {
	s.provider = newFakeProvider(
		Distribution{Id: "DIST1", DomainName: "example.com", Status: "Deployed"},
		Distribution{Id: "DIST2", DomainName: "d222.cloudfront.net", Aliases: []string{"cdn.example.net"}, Status: "Deployed"},
	)
	s.recorder = metrics.NewRecorder(nil)
	s.index = NewDistributionIndex(s.provider)
	s.purger = NewPurger(s.index, s.provider, WithPurgerMetrics(s.recorder))
}

func (s *PurgerSuite) TestPurgeStartsInvalidation() {
	result, err := s.purger.Purge(context.Background(), "https://example.com/foo")
	s.Require().NoError(err)

	s.True(result.Found)
	s.Equal("/foo", result.Path)
	s.Equal("DIST1", result.DistributionId)
	s.Equal("example.com", result.Hostname)
	s.Equal("I1", result.InvalidationId)

	s.Require().Len(s.provider.created, 1)
	req := s.provider.created[0]
	s.Equal("DIST1", req.DistributionId)
	s.Equal([]string{"/foo"}, req.Paths)
	s.NotEmpty(req.CallerReference)
	s.Equal(1.0, testutil.ToFloat64(s.recorder.PurgeCounter(metrics.PurgeStarted)))
}

func (s *PurgerSuite) TestPurgeKeepsPathEncoding() {
	for raw, want := range map[string]string{
		"https://example.com/a%2Fb":       "/a%2Fb",
		"https://example.com/dir/":        "/dir/",
		"https://example.com:8443/%7Efoo": "/%7Efoo",
	} {
		result, err := s.purger.Purge(context.Background(), raw)
		s.Require().NoError(err, raw)
		s.True(result.Found, raw)
		s.Equal(want, result.Path, raw)
		s.Equal([]string{want}, s.provider.created[len(s.provider.created)-1].Paths, raw)
	}
}

func (s *PurgerSuite) TestPurgeByAlias() {
	result, err := s.purger.Purge(context.Background(), "http://cdn.example.net/img/logo.png")
	s.Require().NoError(err)
	s.True(result.Found)
	s.Equal("DIST2", result.DistributionId)
	s.Equal("cdn.example.net", result.Hostname)
	s.Equal([]string{"/img/logo.png"}, s.provider.created[0].Paths)
}

func (s *PurgerSuite) TestPurgeUnknownHost() {
	result, err := s.purger.Purge(context.Background(), "https://unknown.test/x")
	s.Require().NoError(err)
	s.False(result.Found)
	s.Empty(s.provider.created)
	s.Equal(1.0, testutil.ToFloat64(s.recorder.PurgeCounter(metrics.PurgeNotFound)))
}

func (s *PurgerSuite) TestPurgeUsesFreshCallerReference() {
	ctx := context.Background()
	_, err := s.purger.Purge(ctx, "https://example.com/foo")
	s.Require().NoError(err)
	_, err = s.purger.Purge(ctx, "https://example.com/foo")
	s.Require().NoError(err)

	s.Require().Len(s.provider.created, 2)
	s.NotEqual(s.provider.created[0].CallerReference, s.provider.created[1].CallerReference)
}

func (s *PurgerSuite) TestPurgeWithCustomTokenGenerator() {
	purger := NewPurger(s.index, s.provider, WithTokenGenerator(func() string { return "token-1" }))
	_, err := purger.Purge(context.Background(), "https://example.com/")
	s.Require().NoError(err)
	s.Equal("token-1", s.provider.created[0].CallerReference)
	s.Equal([]string{"/"}, s.provider.created[0].Paths)
}

func (s *PurgerSuite) TestPurgeInvalidURL() {
	for _, raw := range []string{"://bad", "example.com/foo", "/only/path", "https://exa mple.com/"} {
		_, err := s.purger.Purge(context.Background(), raw)
		s.ErrorIs(err, ErrInvalidURL, raw)
	}
	s.Empty(s.provider.created)
	s.Equal(0, s.provider.listDistCalls)
}

func (s *PurgerSuite) TestPurgeProviderFailure() {
	s.provider.createErr = errors.New("TooManyInvalidationsInProgress")
	_, err := s.purger.Purge(context.Background(), "https://example.com/foo")
	s.ErrorIs(err, ErrProviderUnavailable)
	s.Equal(1.0, testutil.ToFloat64(s.recorder.PurgeCounter(metrics.PurgeError)))
}

func (s *PurgerSuite) TestPurgeIndexFailure() {
	s.provider.listDistErr = errors.New("down")
	_, err := s.purger.Purge(context.Background(), "https://example.com/foo")
	s.ErrorIs(err, ErrProviderUnavailable)
	s.Empty(s.provider.created)
}

func (s *PurgerSuite) TestWaitForInvalidation() {
	s.provider.detailStatus = []string{"InProgress", "InProgress", CompletedStatus}

	var seen []string
	err := WaitForInvalidation(context.Background(), s.provider, "DIST1", "I1", time.Millisecond, func(status string) {
		seen = append(seen, status)
	})
	s.Require().NoError(err)
	s.Equal([]string{"InProgress", "InProgress", CompletedStatus}, seen)
}

func (s *PurgerSuite) TestWaitForInvalidationCancelled() {
	s.provider.detailStatus = []string{"InProgress", "InProgress", "InProgress"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForInvalidation(ctx, s.provider, "DIST1", "I1", time.Hour, nil)
	s.ErrorIs(err, context.Canceled)
}
