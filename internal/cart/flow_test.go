package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConfirmer struct {
	answer  bool
	err     error
	prompts []Prompt
}

func (r *recordingConfirmer) Confirm(ctx context.Context, p Prompt) (bool, error) {
	r.prompts = append(r.prompts, p)
	return r.answer, r.err
}

func newTestFlow(t *testing.T, items ...LineItem) (*Flow, *Store, *countingStorage) {
	t.Helper()
	s, backing := newTestStore(t)
	if len(items) > 0 {
		require.NoError(t, s.Save(context.Background(), session, Cart{Items: items}))
	}
	return NewFlow(s, nil), s, backing
}

func single(qty int) LineItem {
	return LineItem{ID: "p1", Name: "Notebook", Price: 10, Image: "p1.png", Quantity: qty}
}

func TestChangeQuantity_IncreaseStaysIdle(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFlow(t, single(1))
	confirm := &recordingConfirmer{}

	out, err := f.ChangeQuantity(ctx, session, "p1", 1, confirm)
	require.NoError(t, err)
	assert.Equal(t, Idle, out.State)
	assert.Equal(t, 2, out.Cart.Items[0].Quantity)
	assert.Empty(t, confirm.prompts)
}

func TestChangeQuantity_DecreaseAboveZeroStaysIdle(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFlow(t, single(3))
	confirm := &recordingConfirmer{}

	out, err := f.ChangeQuantity(ctx, session, "p1", -1, confirm)
	require.NoError(t, err)
	assert.Equal(t, Idle, out.State)
	assert.Equal(t, 2, out.Cart.Items[0].Quantity)
	assert.Empty(t, confirm.prompts)
}

func TestChangeQuantity_DecreaseToZeroAsksFirst(t *testing.T) {
	ctx := context.Background()
	f, s, backing := newTestFlow(t, single(1))
	writes := backing.sets
	pending := &recordingConfirmer{err: ErrConfirmationPending}

	out, err := f.ChangeQuantity(ctx, session, "p1", -1, pending)
	require.NoError(t, err)
	assert.Equal(t, PendingRemovalConfirmation, out.State)
	require.NotNil(t, out.Prompt)
	assert.Equal(t, "Remove Notebook?", out.Prompt.Title)
	assert.Equal(t, writes, backing.sets, "nothing may be written before the user answers")

	c, err := s.Load(ctx, session)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestChangeQuantity_DecreaseToZeroDeclined(t *testing.T) {
	ctx := context.Background()
	f, s, _ := newTestFlow(t, single(1))
	decline := &recordingConfirmer{answer: false}

	out, err := f.ChangeQuantity(ctx, session, "p1", -1, decline)
	require.NoError(t, err)
	assert.Equal(t, Idle, out.State)
	assert.True(t, out.Declined)
	assert.False(t, out.Removed)
	require.Len(t, decline.prompts, 1)

	c, err := s.Load(ctx, session)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestChangeQuantity_DecreaseToZeroConfirmed(t *testing.T) {
	ctx := context.Background()
	f, s, _ := newTestFlow(t, single(1))

	out, err := f.ChangeQuantity(ctx, session, "p1", -1, AlwaysConfirm)
	require.NoError(t, err)
	assert.Equal(t, Idle, out.State)
	assert.True(t, out.Removed)
	assert.True(t, out.Cart.Empty())

	b, err := s.Badge(ctx, session)
	require.NoError(t, err)
	assert.False(t, b.Visible)
	assert.Zero(t, b.Count)
}

func TestChangeQuantity_IncreaseAtLimitDoesNotPrompt(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFlow(t, single(MaxQuantity))
	confirm := &recordingConfirmer{}

	out, err := f.ChangeQuantity(ctx, session, "p1", math.MaxInt, confirm)
	require.NoError(t, err)
	assert.Equal(t, Idle, out.State)
	assert.Equal(t, MaxQuantity, out.Cart.Items[0].Quantity)
	assert.Empty(t, confirm.prompts)
}

func TestChangeQuantity_UnknownItem(t *testing.T) {
	f, _, _ := newTestFlow(t)
	_, err := f.ChangeQuantity(context.Background(), session, "ghost", -1, AlwaysConfirm)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestChangeQuantity_ConfirmerError(t *testing.T) {
	ctx := context.Background()
	f, s, _ := newTestFlow(t, single(1))
	boom := errors.New("dialog crashed")

	out, err := f.ChangeQuantity(ctx, session, "p1", -1, &recordingConfirmer{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Idle, out.State)

	c, err := s.Load(ctx, session)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestRemove(t *testing.T) {
	tests := map[string]struct {
		confirmer   Confirmer
		wantState   State
		wantRemoved bool
		wantLeft    int
	}{
		"confirmed": {AlwaysConfirm, Idle, true, 0},
		"declined":  {NeverConfirm, Idle, false, 1},
		"pending":   {&recordingConfirmer{err: ErrConfirmationPending}, PendingRemovalConfirmation, false, 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f, s, _ := newTestFlow(t, single(4))

			out, err := f.Remove(ctx, session, "p1", tt.confirmer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, out.State)
			assert.Equal(t, tt.wantRemoved, out.Removed)

			c, err := s.Load(ctx, session)
			require.NoError(t, err)
			assert.Len(t, c.Items, tt.wantLeft)
		})
	}
}

func TestRemove_UnknownItem(t *testing.T) {
	f, _, _ := newTestFlow(t, single(1))
	confirm := &recordingConfirmer{answer: true}

	_, err := f.Remove(context.Background(), session, "ghost", confirm)
	require.ErrorIs(t, err, ErrItemNotFound)
	assert.Empty(t, confirm.prompts, "no prompt for a line that does not exist")
}

func TestClear_AlreadyEmptyDoesNotPrompt(t *testing.T) {
	f, _, backing := newTestFlow(t)
	confirm := &recordingConfirmer{answer: true}

	out, err := f.Clear(context.Background(), session, confirm)
	require.NoError(t, err)
	assert.Equal(t, ClearAlreadyEmpty, out.Result)
	assert.Empty(t, confirm.prompts)
	assert.Zero(t, backing.sets)
}

func TestClear(t *testing.T) {
	tests := map[string]struct {
		confirmer Confirmer
		want      ClearResult
		wantLeft  int
	}{
		"confirmed": {AlwaysConfirm, Cleared, 0},
		"declined":  {NeverConfirm, ClearDeclined, 2},
		"pending":   {&recordingConfirmer{err: ErrConfirmationPending}, ClearPending, 2},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			other := LineItem{ID: "p2", Name: "Vase", Price: 5, Image: "p2.png", Quantity: 1}
			f, s, _ := newTestFlow(t, single(1), other)

			out, err := f.Clear(ctx, session, tt.confirmer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Result)
			if tt.want == ClearPending {
				require.NotNil(t, out.Prompt)
				assert.Equal(t, ClearPrompt, *out.Prompt)
			}

			c, err := s.Load(ctx, session)
			require.NoError(t, err)
			assert.Len(t, c.Items, tt.wantLeft)
		})
	}
}

func TestRemovalPrompt_FallsBackForUnnamedItems(t *testing.T) {
	p := RemovalPrompt(LineItem{ID: "x"})
	assert.Equal(t, "Remove this item?", p.Title)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "pending-removal-confirmation", PendingRemovalConfirmation.String())
	assert.Equal(t, "State(7)", State(7).String())
}
