package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithEitherDone_SecondCancels(t *testing.T) {
	a := context.Background()
	b, cancelB := context.WithCancel(context.Background())

	ctx, cancel := WithEitherDone(a, b)
	defer cancel()

	cancelB()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWithEitherDone_FirstCancels(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	ctx, cancel := WithEitherDone(a, context.Background())
	defer cancel()

	cancelA()
	<-ctx.Done()
}

func TestWithEitherDone_CancelReleases(t *testing.T) {
	ctx, cancel := WithEitherDone(context.Background(), context.Background())
	cancel()

	assert.Error(t, ctx.Err())
}
