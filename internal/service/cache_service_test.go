package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-tests-api/internal/models"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

type memCache struct {
	data   map[string][]byte
	getErr error
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(&memCache{data: map[string][]byte{}}, nil, 0, nil, false)
	assert.False(t, svc.Enabled())
	var dest string
	assert.False(t, svc.Get(context.Background(), "k", &dest))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Set(context.Background(), "k", "v")
	nilSvc.Invalidate(context.Background(), "*")
}

func TestCacheServiceSwallowsErrors(t *testing.T) {
	svc := NewCacheService(&memCache{data: map[string][]byte{}, getErr: errors.New("redis down")}, NewMetricsService(), 0, nil, true)
	var dest string
	assert.False(t, svc.Get(context.Background(), "k", &dest))
}

func TestTestListIsCachedAndInvalidated(t *testing.T) {
	f := newFixture()
	cache := &memCache{data: map[string][]byte{}}
	f.tests.cache = NewCacheService(cache, f.metrics, time.Minute, nil, true)

	list, err := f.tests.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Contains(t, cache.data, testListKey)

	// A stale entry is served until a write invalidates it.
	f.store.PutTest(models.Test{Subject: "Direct"})
	list, err = f.tests.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.tests.Create(context.Background(), &f.admin, testPayload())
	require.NoError(t, err)
	assert.NotContains(t, cache.data, testListKey)

	list, err = f.tests.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
