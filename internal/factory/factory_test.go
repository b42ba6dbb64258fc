package factory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type widget struct{ id int }

func TestFactory_CreatesFreshInstances(t *testing.T) {
	t.Parallel()

	next := 0
	f := New(func() *widget {
		next++
		return &widget{id: next}
	}, nil)

	a := f.Create()
	b := f.Create()
	assert.NotSame(t, a, b)
	assert.Equal(t, 1, a.id)
	assert.Equal(t, 2, b.id)
	assert.Equal(t, int64(2), f.Created())
}

func TestFactory_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	f := New(func() widget { return widget{} }, nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() { _ = f.Create() })
	}
	wg.Wait()
	assert.Equal(t, int64(50), f.Created())
}

func TestFactory_NilConstructorPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New[*widget](nil, nil) })
}
