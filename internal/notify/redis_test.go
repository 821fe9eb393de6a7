package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmarks/internal/logger"
)

func TestRedisNotifier_PublishesChanges(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := NewRedisNotifier(ctx, mr.Addr(), "", 0, "bookmarks:test", logger.NewNop())
	require.NoError(t, err)
	defer n.Close()

	sub := n.Subscribe(ctx)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	want := Change{Op: "move", UUIDs: []string{"a", "b"}, At: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, n.Notify(ctx, want))

	select {
	case msg := <-sub.Channel():
		got, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, want.Op, got.Op)
		assert.Equal(t, want.UUIDs, got.UUIDs)
		assert.True(t, want.At.Equal(got.At))
	case <-ctx.Done():
		t.Fatal("no change received")
	}
}

func TestNewRedisNotifier_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewRedisNotifier(ctx, addr, "", 0, "bookmarks:test", logger.NewNop())
	assert.Error(t, err)
}

func TestFuncNotifier(t *testing.T) {
	var got Change
	n := Func(func(_ context.Context, c Change) error {
		got = c
		return nil
	})
	require.NoError(t, n.Notify(context.Background(), Change{Op: "save"}))
	assert.Equal(t, "save", got.Op)
	assert.NoError(t, Nop{}.Notify(context.Background(), Change{}))
}
