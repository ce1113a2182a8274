package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-ledger/internal/logging"
	"steam-ledger/internal/models"
)

const purchaseEmail = `Subject: Thank you for your Community Market purchase

Visit https://store.steampowered.com/account for your account activity.

Widget: $ 1.23
Total: $ 1.23

Confirmation Number: 123456
Date Confirmed: 2021-03-01 10:00:00
`

const unrelatedEmail = `Subject: Your weekly newsletter

Nothing about trades in here.
`

const brokenEmail = `Subject: Thank you for your Community Market purchase

Visit https://store.steampowered.com/account for your account activity.

Widget: $ 1.23
Total: $ 1.23

Date Confirmed: 2021-03-01 10:00:00
`

// fakeSource serves canned messages and records the listing bound.
type fakeSource struct {
	ids       []string
	messages  map[string][]byte
	lastSince time.Time
	fetches   [][]string
	fetchErr  error
	listErr   error
}

func (f *fakeSource) List(since time.Time) ([]string, error) {
	f.lastSince = since
	return f.ids, f.listErr
}

func (f *fakeSource) Fetch(ids []string) (map[string][]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.fetches = append(f.fetches, ids)
	out := make(map[string][]byte, len(ids))
	for _, id := range ids {
		if raw, ok := f.messages[id]; ok {
			out[id] = raw
		}
	}
	return out, nil
}

func (f *fakeSource) Close() error { return nil }

// fakeStore is an in-memory ledger keyed by confirmation number.
type fakeStore struct {
	rows      map[string]models.Transaction
	commitErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]models.Transaction)}
}

func (f *fakeStore) EnsureSchema() error { return nil }

func (f *fakeStore) InsertIgnore(transactions []models.Transaction) (int64, error) {
	if f.commitErr != nil {
		return 0, f.commitErr
	}
	var inserted int64
	for _, t := range transactions {
		if _, ok := f.rows[t.Number]; ok {
			continue
		}
		f.rows[t.Number] = t
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) MaxDate() (time.Time, bool, error) {
	var max time.Time
	for _, t := range f.rows {
		if t.Date.After(max) {
			max = t.Date
		}
	}
	return max, !max.IsZero(), nil
}

func TestRunEndToEnd(t *testing.T) {
	source := &fakeSource{
		ids: []string{"1", "2"},
		messages: map[string][]byte{
			"1": []byte(purchaseEmail),
			"2": []byte(unrelatedEmail),
		},
	}
	ledger := newFakeStore()
	log := logging.NewMockLogger()

	summary, err := New(source, ledger, Options{Workers: 2}, log).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Batches)
	assert.Equal(t, 2, summary.Messages)
	assert.Equal(t, int64(1), summary.Added)
	assert.Equal(t, int64(0), summary.Duplicates)
	assert.Equal(t, 0, summary.ParseFailures)

	require.Len(t, ledger.rows, 1)
	row := ledger.rows["123456"]
	assert.Equal(t, "Widget", row.Title)
	assert.Equal(t, int64(-123), row.Amount)
	assert.Equal(t, time.Date(2021, time.March, 1, 10, 0, 0, 0, time.UTC), row.Date)

	assert.True(t, log.HasEntry("INFO", "1 transactions added, 0 duplicates ignored"))
}

func TestRunIsIdempotent(t *testing.T) {
	ledger := newFakeStore()
	for run := 0; run < 2; run++ {
		source := &fakeSource{
			ids:      []string{"1"},
			messages: map[string][]byte{"1": []byte(purchaseEmail)},
		}
		summary, err := New(source, ledger, Options{}, logging.NewMockLogger()).Run()
		require.NoError(t, err)
		if run == 0 {
			assert.Equal(t, int64(1), summary.Added)
			assert.Equal(t, int64(0), summary.Duplicates)
		} else {
			assert.Equal(t, int64(0), summary.Added, "rerun adds nothing")
			assert.Equal(t, int64(1), summary.Duplicates)
		}
	}
	assert.Len(t, ledger.rows, 1)
}

func TestRunIncrementalUsesWatermark(t *testing.T) {
	watermark := time.Date(2021, time.March, 1, 10, 0, 0, 0, time.UTC)
	ledger := newFakeStore()
	ledger.rows["old"] = models.Transaction{Number: "old", Date: watermark}

	source := &fakeSource{}
	_, err := New(source, ledger, Options{Incremental: true}, logging.NewMockLogger()).Run()
	require.NoError(t, err)
	assert.True(t, source.lastSince.Equal(watermark))
}

func TestRunFullScanHasNoBound(t *testing.T) {
	source := &fakeSource{}
	_, err := New(source, newFakeStore(), Options{}, logging.NewMockLogger()).Run()
	require.NoError(t, err)
	assert.True(t, source.lastSince.IsZero())
}

func TestRunSplitsBatches(t *testing.T) {
	source := &fakeSource{
		ids: []string{"1", "2", "3"},
		messages: map[string][]byte{
			"1": []byte(unrelatedEmail),
			"2": []byte(unrelatedEmail),
			"3": []byte(unrelatedEmail),
		},
	}
	summary, err := New(source, newFakeStore(), Options{BatchSize: 2}, logging.NewMockLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Batches)
	require.Len(t, source.fetches, 2)
	assert.Equal(t, []string{"1", "2"}, source.fetches[0])
	assert.Equal(t, []string{"3"}, source.fetches[1])
}

func TestRunContinuesPastParseFailures(t *testing.T) {
	source := &fakeSource{
		ids: []string{"1", "2"},
		messages: map[string][]byte{
			"1": []byte(brokenEmail),
			"2": []byte(purchaseEmail),
		},
	}
	log := logging.NewMockLogger()

	summary, err := New(source, newFakeStore(), Options{Workers: 2}, log).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ParseFailures)
	assert.Equal(t, int64(1), summary.Added)
	assert.Len(t, log.EntriesByLevel("WARN"), 1)
}

func TestRunFetchErrorIsFatal(t *testing.T) {
	source := &fakeSource{
		ids:      []string{"1"},
		fetchErr: errors.New("mailbox exploded"),
	}
	_, err := New(source, newFakeStore(), Options{}, logging.NewMockLogger()).Run()
	assert.ErrorContains(t, err, "mailbox exploded")
}

func TestRunCommitErrorIsFatal(t *testing.T) {
	source := &fakeSource{
		ids:      []string{"1"},
		messages: map[string][]byte{"1": []byte(purchaseEmail)},
	}
	ledger := newFakeStore()
	ledger.commitErr = errors.New("disk full")

	_, err := New(source, ledger, Options{}, logging.NewMockLogger()).Run()
	assert.ErrorContains(t, err, "disk full")
}

func TestRunEmptyListing(t *testing.T) {
	source := &fakeSource{}
	log := logging.NewMockLogger()

	summary, err := New(source, newFakeStore(), Options{}, log).Run()
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.True(t, log.HasEntry("INFO", "no messages to process"))
	assert.Empty(t, source.fetches)
}
