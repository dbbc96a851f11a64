package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
)

func TestTransitionEntrySaveAlwaysSubmits(t *testing.T) {
	for _, from := range []EntryStatus{EntryStatusDraft, EntryStatusSubmitted, EntryStatusApproved, EntryStatusRejected} {
		next, err := TransitionEntry(from, EntryEventSave)
		require.NoError(t, err, "save from %s", from)
		assert.Equal(t, EntryStatusSubmitted, next)
	}
}

func TestTransitionEntryReviewRequiresSubmitted(t *testing.T) {
	cases := []struct {
		from  EntryStatus
		event EntryEvent
		want  EntryStatus
		ok    bool
	}{
		{EntryStatusSubmitted, EntryEventApprove, EntryStatusApproved, true},
		{EntryStatusSubmitted, EntryEventReject, EntryStatusRejected, true},
		{EntryStatusApproved, EntryEventApprove, EntryStatusApproved, false},
		{EntryStatusApproved, EntryEventReject, EntryStatusApproved, false},
		{EntryStatusRejected, EntryEventApprove, EntryStatusRejected, false},
		{EntryStatusDraft, EntryEventReject, EntryStatusDraft, false},
	}
	for _, tc := range cases {
		next, err := TransitionEntry(tc.from, tc.event)
		if tc.ok {
			require.NoError(t, err, "%s on %s", tc.event, tc.from)
			assert.Equal(t, tc.want, next)
			continue
		}
		require.Error(t, err, "%s on %s", tc.event, tc.from)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
		assert.Equal(t, tc.want, next, "status must not change on refusal")
	}
}

func TestTransitionEntryUnknownEvent(t *testing.T) {
	_, err := TransitionEntry(EntryStatusSubmitted, EntryEvent("ARCHIVE"))
	require.Error(t, err)
}

func TestWeekSummaryComplete(t *testing.T) {
	assert.True(t, WeekSummary{Week: 1, Total: 5, Approved: 5}.Complete())
	assert.False(t, WeekSummary{Week: 1, Total: 5, Approved: 4}.Complete())
	assert.False(t, WeekSummary{Week: 1, Total: 4, Approved: 4}.Complete())
	assert.False(t, WeekSummary{}.Complete())
}

func TestWeekdayValid(t *testing.T) {
	assert.True(t, Monday.Valid())
	assert.True(t, Friday.Valid())
	assert.False(t, Weekday(0).Valid())
	assert.False(t, Weekday(6).Valid())
	assert.Equal(t, "Wednesday", Weekday(3).String())
}
