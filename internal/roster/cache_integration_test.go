//go:build integration

package roster_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/roster"
	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/testutil/containers"
)

// countingStore counts reads so cache hits are observable.
type countingStore struct {
	roster.Store
	policyReads int
	windowReads int
}

func (c *countingStore) GroupPolicy(ctx context.Context, groupID id.GroupID) (roster.GroupPolicy, error) {
	c.policyReads++
	return c.Store.GroupPolicy(ctx, groupID)
}

func (c *countingStore) GroupWindows(ctx context.Context, groupID id.GroupID) ([]schedule.Window, error) {
	c.windowReads++
	return c.Store.GroupWindows(ctx, groupID)
}

type PolicyCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *countingStore
	store   *roster.CachedStore
}

func TestPolicyCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PolicyCacheSuite))
}

func (s *PolicyCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *PolicyCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))

	s.backing = &countingStore{Store: roster.NewInMemoryStore()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := roster.NewCachedStore(s.backing, s.redis.Client, time.Minute, logger)
	s.Require().NoError(err)
	s.store = store
}

func (s *PolicyCacheSuite) configure(tolerance int, kind roster.PolicyKind) {
	window, err := schedule.NewWindow(schedule.Monday, schedule.Minute(8*60), schedule.Minute(10*60))
	s.Require().NoError(err)
	s.Require().NoError(s.store.SaveGroupConfig(context.Background(), roster.GroupConfig{
		GroupID: id.GroupID(42),
		Windows: []schedule.Window{window},
		Policy:  roster.GroupPolicy{ToleranceMinutes: tolerance, Kind: kind},
	}))
}

func (s *PolicyCacheSuite) TestPolicyReadsServedFromCache() {
	ctx := context.Background()
	s.configure(15, roster.PolicyStrict)

	first, err := s.store.GroupPolicy(ctx, id.GroupID(42))
	s.Require().NoError(err)
	second, err := s.store.GroupPolicy(ctx, id.GroupID(42))
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(roster.GroupPolicy{ToleranceMinutes: 15, Kind: roster.PolicyStrict}, first)
	s.Equal(1, s.backing.policyReads, "second read must come from redis")
}

func (s *PolicyCacheSuite) TestWindowReadsServedFromCache() {
	ctx := context.Background()
	s.configure(10, roster.PolicyStandard)

	first, err := s.store.GroupWindows(ctx, id.GroupID(42))
	s.Require().NoError(err)
	second, err := s.store.GroupWindows(ctx, id.GroupID(42))
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Require().Len(second, 1)
	s.Equal(1, s.backing.windowReads)
}

func (s *PolicyCacheSuite) TestSaveInvalidatesCache() {
	ctx := context.Background()
	s.configure(10, roster.PolicyStandard)

	_, err := s.store.GroupPolicy(ctx, id.GroupID(42))
	s.Require().NoError(err)

	// A write drops the cached entries; the next read sees the new policy.
	s.configure(5, roster.PolicyLenient)

	policy, err := s.store.GroupPolicy(ctx, id.GroupID(42))
	s.Require().NoError(err)
	s.Equal(roster.GroupPolicy{ToleranceMinutes: 5, Kind: roster.PolicyLenient}, policy)
}

func (s *PolicyCacheSuite) TestNotFoundIsCached() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.store.GroupPolicy(ctx, id.GroupID(404))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "got %v", err)
	}
	s.Equal(1, s.backing.policyReads, "the not-found answer is cached too")
}
