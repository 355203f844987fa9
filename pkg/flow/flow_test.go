package flow_test

import (
	"errors"
	"iter"
	"strconv"
	"testing"

	"docsync-be/pkg/flow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// source yields the given values and then err, if any, counting pulls.
func source(pulled *int, err error, values ...int) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for _, v := range values {
			*pulled++
			if !yield(v, nil) {
				return
			}
		}
		if err != nil {
			yield(0, err)
		}
	}
}

func TestMapPreservesOrder(t *testing.T) {
	var pulled int
	seq := flow.Map(source(&pulled, nil, 1, 2, 3), func(v int) (string, error) {
		return strconv.Itoa(v * 10), nil
	})

	var got []string
	for v, err := range seq {
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, []string{"10", "20", "30"}, got)
	assert.Equal(t, 3, pulled)
}

func TestMapStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var pulled int
	seq := flow.Map(source(&pulled, nil, 1, 2, 3), func(v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})

	n, err := flow.Count(seq)

	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, pulled, "third element must never be requested")
}

func TestOnCompletionRunsOnce(t *testing.T) {
	boom := errors.New("upstream failed")

	tests := []struct {
		name      string
		seq       func(*int) iter.Seq2[int, error]
		breakAt   int
		wantCause error
	}{
		{
			name:      "exhausted",
			seq:       func(p *int) iter.Seq2[int, error] { return source(p, nil, 1, 2) },
			wantCause: nil,
		},
		{
			name:      "upstream error",
			seq:       func(p *int) iter.Seq2[int, error] { return source(p, boom, 1) },
			wantCause: boom,
		},
		{
			name:      "consumer breaks",
			seq:       func(p *int) iter.Seq2[int, error] { return source(p, nil, 1, 2, 3) },
			breakAt:   1,
			wantCause: flow.ErrStopped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pulled, calls int
			var cause error
			seq := flow.OnCompletion(tt.seq(&pulled), func(c error) {
				calls++
				cause = c
			})

			seen := 0
			for _, err := range seq {
				if err != nil {
					// hook has already observed the error when the consumer sees it
					assert.Equal(t, 1, calls)
					break
				}
				seen++
				if tt.breakAt > 0 && seen == tt.breakAt {
					break
				}
			}

			assert.Equal(t, 1, calls)
			assert.ErrorIs(t, cause, tt.wantCause)
			if tt.wantCause == nil {
				assert.NoError(t, cause)
			}
		})
	}
}

func TestLifecycleHooks(t *testing.T) {
	var pulled int
	var events []string

	seq := flow.OnStart(source(&pulled, nil, 1, 2, 3, 4), func() { events = append(events, "start") })
	seq = flow.OnEach(seq, func(v int) { events = append(events, "each:"+strconv.Itoa(v)) })
	seq = flow.Every(seq, 2, func(n int) { events = append(events, "milestone:"+strconv.Itoa(n)) })

	assert.Empty(t, events, "nothing runs before the sequence is ranged")

	n, err := flow.Count(seq)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{
		"start",
		"each:1", "each:2", "milestone:2",
		"each:3", "each:4", "milestone:4",
	}, events)
}

func TestCatchPassesErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	var pulled int
	var caught error

	n, err := flow.Count(flow.Catch(source(&pulled, boom, 1, 2), func(e error) { caught = e }))

	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, caught, boom)
}

func TestRangingTwiceReexecutes(t *testing.T) {
	var pulled int
	seq := source(&pulled, nil, 1, 2)

	_, _ = flow.Count(seq)
	_, _ = flow.Count(seq)

	assert.Equal(t, 4, pulled)
}
