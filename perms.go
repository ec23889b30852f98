package portio

// Perm is the portable permission set: user/group/world read, write and
// execute triples plus set-user-id, set-group-id and sticky.
type Perm uint32

const (
	WorldExecute Perm = 0x0001
	WorldWrite   Perm = 0x0002
	WorldRead    Perm = 0x0004
	GroupExecute Perm = 0x0010
	GroupWrite   Perm = 0x0020
	GroupRead    Perm = 0x0040
	UserExecute  Perm = 0x0100
	UserWrite    Perm = 0x0200
	UserRead     Perm = 0x0400
	WorldSticky  Perm = 0x2000
	GroupSetID   Perm = 0x4000
	UserSetID    Perm = 0x8000

	// OSDefault defers to the process umask over 0777.
	OSDefault Perm = 0x0FFF
)

const (
	modeSetUID = 0o4000
	modeSetGID = 0o2000
	modeSticky = 0o1000
)

var permBits = []struct {
	perm Perm
	mode uint32
}{
	{UserRead, 0o400},
	{UserWrite, 0o200},
	{UserExecute, 0o100},
	{GroupRead, 0o040},
	{GroupWrite, 0o020},
	{GroupExecute, 0o010},
	{WorldRead, 0o004},
	{WorldWrite, 0o002},
	{WorldExecute, 0o001},
	{UserSetID, modeSetUID},
	{GroupSetID, modeSetGID},
	{WorldSticky, modeSticky},
}

// Mode translates p into native mode bits.
func (p Perm) Mode() uint32 {
	if p == OSDefault {
		return 0o777
	}
	var mode uint32
	for _, b := range permBits {
		if p&b.perm != 0 {
			mode |= b.mode
		}
	}
	return mode
}

// PermFromMode translates native mode bits into a Perm. File type bits are ignored.
func PermFromMode(mode uint32) Perm {
	var p Perm
	for _, b := range permBits {
		if mode&b.mode != 0 {
			p |= b.perm
		}
	}
	return p
}
