package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"atlas/internal/country/directory"
	"atlas/internal/country/metrics"
	"atlas/internal/country/models"
	"atlas/pkg/platform/circuit"
	"atlas/pkg/platform/sentinel"
)

type fakeUpstream struct {
	mu        sync.Mutex
	countries []models.Country
	aliases   map[string]string
	err       error
	allCalls  atomic.Int32
	codeCalls atomic.Int32
	release   chan struct{}
}

func (f *fakeUpstream) All(context.Context) ([]models.Country, error) {
	f.allCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Country(nil), f.countries...), nil
}

func (f *fakeUpstream) ByCode(_ context.Context, code string) (*models.Country, error) {
	f.codeCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if alpha3, ok := f.aliases[code]; ok {
		code = alpha3
	}
	for _, c := range f.countries {
		if c.HasCode(code) {
			return &c, nil
		}
	}
	return nil, directory.NewError(directory.ErrorNotFound, "by_code", "no such country", nil)
}

func (f *fakeUpstream) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var outage = directory.NewError(directory.ErrorOutage, "all", "directory returned 503", nil)

type CachedDirectorySuite struct {
	suite.Suite
	upstream *fakeUpstream
	cache    *InMemoryCache
	metrics  *metrics.Metrics
	dir      *CachedDirectory
}

func TestCachedDirectorySuite(t *testing.T) {
	suite.Run(t, new(CachedDirectorySuite))
}

func (s *CachedDirectorySuite) SetupTest() {
	s.upstream = &fakeUpstream{
		countries: []models.Country{
			{Name: "France", Code: "FRA", Borders: []string{"DEU"}},
			{Name: "Germany", Code: "DEU", Borders: []string{"FRA"}},
		},
		// records without alpha2Code, as a sparse field list returns them
		aliases: map[string]string{"DE": "DEU", "FR": "FRA"},
	}
	s.cache = NewInMemoryCache(time.Hour)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.dir = NewCachedDirectory(s.upstream, s.cache,
		WithBreaker(circuit.New("directory", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))),
		WithMetrics(s.metrics),
	)
}

func (s *CachedDirectorySuite) TestAllIsCached() {
	ctx := context.Background()

	first, err := s.dir.All(ctx)
	s.Require().NoError(err)
	second, err := s.dir.All(ctx)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(int32(1), s.upstream.allCalls.Load())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("all", "hit")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("all", "miss")))
}

func (s *CachedDirectorySuite) TestByCodeUsesCachedCollection() {
	ctx := context.Background()
	_, err := s.dir.All(ctx)
	s.Require().NoError(err)

	country, err := s.dir.ByCode(ctx, "DEU")
	s.Require().NoError(err)
	s.Equal("Germany", country.Name)
	s.Zero(s.upstream.codeCalls.Load())
}

func (s *CachedDirectorySuite) TestByCodeNotFound() {
	_, err := s.dir.ByCode(context.Background(), "ZZZ")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.False(s.dir.Degraded(), "not found is a healthy answer")
}

func (s *CachedDirectorySuite) TestConcurrentMissesShareOneFetch() {
	s.upstream.release = make(chan struct{})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			countries, err := s.dir.All(context.Background())
			s.NoError(err)
			s.Len(countries, 2)
		}()
	}
	s.Eventually(func() bool { return s.upstream.allCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(s.upstream.release)
	wg.Wait()

	s.Equal(int32(1), s.upstream.allCalls.Load())
}

func (s *CachedDirectorySuite) TestCallerCancellationDoesNotAbortSharedFetch() {
	s.upstream.release = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.dir.All(ctx)
		done <- err
	}()
	s.Eventually(func() bool { return s.upstream.allCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	err := <-done
	s.Equal(directory.ErrorCanceled, directory.GetCategory(err))

	close(s.upstream.release)
	s.Eventually(func() bool {
		_, err := s.cache.FindAll(context.Background())
		return err == nil
	}, time.Second, 5*time.Millisecond, "detached fetch still fills the cache")
}

func (s *CachedDirectorySuite) TestServesStaleDataWhileOpen() {
	ctx := context.Background()
	_, err := s.dir.All(ctx)
	s.Require().NoError(err)

	// expire the cache so the next call goes upstream
	s.cache = NewInMemoryCache(0)
	s.dir.cache = s.cache
	s.upstream.fail(outage)

	_, err = s.dir.All(ctx)
	s.Require().Error(err, "first failure surfaces while the breaker is closed")
	s.ErrorIs(err, sentinel.ErrUnavailable)

	countries, err := s.dir.All(ctx)
	s.Require().NoError(err)
	s.Len(countries, 2)
	s.True(s.dir.Degraded())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BreakerState))

	country, err := s.dir.ByCode(ctx, "FRA")
	s.Require().NoError(err)
	s.Equal("France", country.Name)

	s.upstream.fail(nil)
	_, err = s.dir.All(ctx)
	s.Require().NoError(err)
	s.False(s.dir.Degraded())
	s.Equal(0.0, testutil.ToFloat64(s.metrics.BreakerState))
}

func (s *CachedDirectorySuite) TestOpenWithoutHistoryFails() {
	s.upstream.fail(outage)
	for range 3 {
		_, err := s.dir.All(context.Background())
		s.ErrorIs(err, sentinel.ErrUnavailable)
	}
	s.True(s.dir.Degraded())
}

func (s *CachedDirectorySuite) TestRepeatedAlpha2LookupIsCached() {
	ctx := context.Background()

	for range 3 {
		country, err := s.dir.ByCode(ctx, "DE")
		s.Require().NoError(err)
		s.Equal("DEU", country.Code)
	}
	s.Equal(int32(1), s.upstream.codeCalls.Load())

	cached, err := s.cache.FindCountry(ctx, "DEU")
	s.Require().NoError(err)
	s.Equal("DE", cached.Alpha2)
}

func (s *CachedDirectorySuite) TestAlpha2ResolvesFromCachedCollection() {
	ctx := context.Background()
	s.upstream.countries = append(s.upstream.countries, models.Country{Name: "Spain", Code: "ESP", Alpha2: "ES"})
	_, err := s.dir.All(ctx)
	s.Require().NoError(err)

	country, err := s.dir.ByCode(ctx, "ES")
	s.Require().NoError(err)
	s.Equal("Spain", country.Name)
	s.Zero(s.upstream.codeCalls.Load())
}

func (s *CachedDirectorySuite) TestServesStaleAlpha2WhileOpen() {
	ctx := context.Background()
	s.cache = NewInMemoryCache(0)
	s.dir.cache = s.cache

	_, err := s.dir.ByCode(ctx, "DE")
	s.Require().NoError(err)

	s.upstream.fail(outage)
	_, err = s.dir.ByCode(ctx, "DE")
	s.Require().Error(err)

	country, err := s.dir.ByCode(ctx, "DE")
	s.Require().NoError(err, "breaker is open and the alpha-2 lookup has history")
	s.Equal("Germany", country.Name)
}
