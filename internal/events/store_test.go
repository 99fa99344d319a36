package events

import (
	"context"
	"testing"

	"github.com/mark3labs/stepform/internal/form"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSubjects(t *testing.T) {
	t.Parallel()

	require.Equal(t, "stepform.life-quote.>", SubjectForForm("life-quote"))
	require.Equal(t, "stepform.life-quote.submit", SubjectForEvent("life-quote", "submit"))
}

func TestStore_PublishAndSubmissions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	answers := form.Answers{"name": "Ana"}
	rec, err := s.Publish(ctx, "life-quote", form.Event{Type: form.EventChange, Step: 1, Answers: answers})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, "change", rec.Type)

	answers["name"] = "mutated after publish"

	_, err = s.Publish(ctx, "life-quote", form.Event{Type: form.EventSubmit, Step: 3, Answers: form.Answers{"name": "Ana", "email": "a@b.com"}})
	require.NoError(t, err)
	_, err = s.Publish(ctx, "life-quote", form.Event{Type: form.EventSubmit, Step: 3, Answers: form.Answers{"name": "Bo"}})
	require.NoError(t, err)
	_, err = s.Publish(ctx, "coverage-picker", form.Event{Type: form.EventSubmit, Step: 2, Answers: form.Answers{"plan": "gold"}})
	require.NoError(t, err)

	subs, err := s.Submissions(ctx, "life-quote")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, map[string]string{"name": "Ana", "email": "a@b.com"}, subs[0].Answers)
	require.Equal(t, "Bo", subs[1].Answers["name"])
	require.Equal(t, 3, subs[0].Step)
	require.Less(t, subs[0].ID, subs[1].ID, "ulids sort in publish order")

	all, err := s.Records(ctx, "life-quote", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Ana", all[0].Answers["name"], "stored answers are a copy")

	other, err := s.Submissions(ctx, "coverage-picker")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestStore_Summary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, typ := range []form.EventType{form.EventChange, form.EventChange, form.EventComplete, form.EventSubmit} {
		_, err := s.Publish(ctx, "quote", form.Event{Type: typ, Answers: form.Answers{}})
		require.NoError(t, err)
	}

	counts, err := s.Summary(ctx, "quote")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"change": 2, "complete": 1, "submit": 1}, counts)

	empty, err := s.Summary(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
