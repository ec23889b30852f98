package portio

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestPermMode(t *testing.T) {
	assert.Equal(t, uint32(0o755), (UserRead | UserWrite | UserExecute | GroupRead | GroupExecute | WorldRead | WorldExecute).Mode())
	assert.Equal(t, uint32(0o640), (UserRead | UserWrite | GroupRead).Mode())
	assert.Equal(t, uint32(0o4700), (UserSetID | UserRead | UserWrite | UserExecute).Mode())
	assert.Equal(t, uint32(0o3000), (GroupSetID | WorldSticky).Mode())
	assert.Equal(t, uint32(0o777), OSDefault.Mode())
}

func TestPermFromMode(t *testing.T) {
	assert.Equal(t, UserRead|UserWrite|GroupRead|WorldRead, PermFromMode(0o100644))
	assert.Equal(t, UserRead|UserWrite|UserExecute|WorldSticky, PermFromMode(0o41700))

	for _, mode := range []uint32{0, 0o7777, 0o751, 0o2710} {
		assert.Equal(t, mode, PermFromMode(mode).Mode())
	}
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "none", Field(0).String())
	assert.Equal(t, "size|name", (FieldName | FieldSize).String())
}
