package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_ShutdownRunsInReverseOrder(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	var order []string
	m.Add("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Add("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	failed := m.Shutdown()

	require.Zero(t, failed)
	require.Equal(t, []string{"second", "first"}, order)
}

func TestManager_ShutdownContinuesAfterFailure(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	called := false
	m.Add("ok", func(ctx context.Context) error {
		called = true
		return nil
	})
	m.Add("broken", func(ctx context.Context) error {
		return errors.New("boom")
	})

	failed := m.Shutdown()

	require.Equal(t, 1, failed)
	require.True(t, called)
}

func TestManager_EachFunctionGetsDeadline(t *testing.T) {
	m := New(50*time.Millisecond, zap.NewNop())

	m.Add("deadline", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		require.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	require.Equal(t, 1, m.Shutdown())
}

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestClose(t *testing.T) {
	c := &closer{}
	require.NoError(t, Close(c)(context.Background()))
	require.True(t, c.closed)
}

func TestManager_WaitContextShutsDownOnCancel(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	called := false
	m.Add("server", func(ctx context.Context) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(errors.New("listen failed"))

	m.WaitContext(ctx)

	require.True(t, called)
}
