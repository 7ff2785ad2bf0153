package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigamon-dev/SubspaceServer-sub008/security"
)

func TestValidatePathBlocksExtension(t *testing.T) {
	s := security.New(security.Config{
		EnableSandbox:     true,
		AllowedPaths:      []string{"/opt/modules"},
		BlockedExtensions: []string{".exe"},
	})
	assert.Error(t, s.ValidatePath("/opt/modules/evil.exe"))
}

func TestValidatePathRejectsOutsideAllowedRoots(t *testing.T) {
	s := security.New(security.Config{
		EnableSandbox: true,
		AllowedPaths:  []string{"/opt/modules"},
	})
	assert.Error(t, s.ValidatePath("/etc/passwd.so"))
	assert.NoError(t, s.ValidatePath("/opt/modules/chat.so"))
}

func TestValidatePathBypassedWhenSandboxDisabled(t *testing.T) {
	s := security.New(security.Config{EnableSandbox: false})
	assert.NoError(t, s.ValidatePath("/etc/passwd.so"))
}

func TestValidatePathBypassedWhenAllowUnsafe(t *testing.T) {
	s := security.New(security.Config{
		EnableSandbox:     true,
		AllowedPaths:      []string{"/opt/modules"},
		BlockedExtensions: []string{".so"},
		AllowUnsafe:       true,
	})
	assert.NoError(t, s.ValidatePath("/etc/passwd.so"))
}
