package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgeforge/judgeforge/internal/build"
)

func descriptors() []build.Descriptor {
	return []build.Descriptor{build.CPP{MakefileDir: "/makefiles"}, build.Python3{MakefileDir: "/makefiles"}}
}

func TestSelectPicksDescriptorByExtension(t *testing.T) {
	d, err := build.Select(descriptors(), []string{"gen.cpp"})
	require.NoError(t, err)
	assert.Equal(t, "cpp", d.Name())

	d, err = build.Select(descriptors(), []string{"gen.py"})
	require.NoError(t, err)
	assert.Equal(t, "python3", d.Name())
}

func TestSelectRequiresEveryExtensionClaimedByOneDescriptor(t *testing.T) {
	_, err := build.Select(descriptors(), []string{"gen.cpp", "lib.py"})
	assert.Error(t, err)
}

func TestSelectRejectsUnknownExtension(t *testing.T) {
	_, err := build.Select(descriptors(), []string{"gen.rs"})
	assert.Error(t, err)
}
