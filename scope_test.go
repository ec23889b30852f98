package portio

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestScopeRunCleanupOnce(t *testing.T) {
	scope := NewScope("once")
	owner := new(int)
	runs := 0
	scope.Register(owner, func() error {
		runs++
		return nil
	})

	require.NoError(t, scope.RunCleanup(owner))
	require.NoError(t, scope.RunCleanup(owner))
	require.NoError(t, scope.Close())
	assert.Equal(t, 1, runs)
}

func TestScopeCloseRunsInReverseOrder(t *testing.T) {
	scope := NewScope("order")
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		scope.Register(&i, func() error {
			order = append(order, i)
			return nil
		})
	}
	require.NoError(t, scope.Close())
	assert.Equal(t, []int{2, 1, 0}, order)

	require.NoError(t, scope.Close())
	assert.Len(t, order, 3)
}

func TestScopeKillCleanup(t *testing.T) {
	scope := NewScope("kill")
	owner := new(int)
	scope.Register(owner, func() error {
		t.Fatal("killed cleanup must not run")
		return nil
	})
	scope.KillCleanup(owner)
	require.NoError(t, scope.Close())
}

func TestScopeChildrenClosedFirst(t *testing.T) {
	parent := NewScope("parent")
	child := parent.NewChild("child")
	var order []string
	parent.Register(parent, func() error {
		order = append(order, "parent")
		return nil
	})
	child.Register(child, func() error {
		order = append(order, "child")
		return nil
	})

	require.NoError(t, parent.Close())
	assert.Equal(t, []string{"child", "parent"}, order)
	assert.True(t, child.Closed())
}

func TestScopeChildClosedEarly(t *testing.T) {
	parent := NewScope("parent")
	child := parent.NewChild("child")
	runs := 0
	child.Register(child, func() error {
		runs++
		return nil
	})
	require.NoError(t, child.Close())
	require.NoError(t, parent.Close())
	assert.Equal(t, 1, runs)
}

func TestScopeCloseReportsFirstError(t *testing.T) {
	scope := NewScope("errors")
	first := errors.New("first")
	scope.Register(1, func() error { return errors.New("second") })
	scope.Register(2, func() error { return first })

	err := scope.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, first))
}

func TestScopeReserve(t *testing.T) {
	scope := NewScope("limit").WithLimit(100)
	require.NoError(t, scope.reserve(60))
	err := scope.reserve(60)
	assert.Equal(t, KindNoMemory, KindOf(err))
	assert.EqualValues(t, 60, scope.Reserved())

	require.NoError(t, scope.Close())
	assert.Equal(t, KindNoMemory, KindOf(scope.reserve(1)))

	var nilScope *Scope
	assert.Equal(t, KindNoMemory, KindOf(nilScope.reserve(1)))
}

func TestScopeChildOfClosedScope(t *testing.T) {
	parent := NewScope("parent")
	require.NoError(t, parent.Close())
	child := parent.NewChild("late")
	assert.True(t, child.Closed())
}
