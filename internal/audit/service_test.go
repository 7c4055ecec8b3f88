package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	entries   []Entry
	gotLimit  int
	gotOffset int
}

func (f *fakeRepo) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	f.gotLimit = limit
	f.gotOffset = offset
	if offset >= len(f.entries) {
		return []Entry{}, nil
	}
	end := offset + limit
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return f.entries[offset:end], nil
}

func manyEntries(n int) []Entry {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{Action: "material.receive", Entity: "material", EntityID: "1"})
	}
	return entries
}

func TestTimelinePaging(t *testing.T) {
	repo := &fakeRepo{entries: manyEntries(25)}
	svc := NewService(repo)

	first, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, first.Rows, 20)
	require.True(t, first.Paging.HasNext)
	require.Equal(t, 21, repo.gotLimit)

	second, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, second.Rows, 5)
	require.False(t, second.Paging.HasNext)
	require.Equal(t, 20, repo.gotOffset)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &fakeRepo{entries: manyEntries(60)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	require.Len(t, result.Rows, 50)
}

func TestTimelineRangeValidated(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Timeline(context.Background(), TimelineFilters{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrValidation)
}
