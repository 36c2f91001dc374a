package version

import (
	"runtime"
	"testing"

	"github.com/keshon/buildinfo"
	"github.com/stretchr/testify/assert"
)

func TestGet_FillsUnstampedProject(t *testing.T) {
	info := Get()
	assert.Equal(t, defaultProject, info.Project)
	assert.Equal(t, defaultDescription, info.Description)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestGet_KeepsStampedValues(t *testing.T) {
	oldProject, oldVersion := buildinfo.Project, buildinfo.Version
	t.Cleanup(func() { buildinfo.Project, buildinfo.Version = oldProject, oldVersion })
	buildinfo.Project = "Helper"
	buildinfo.Version = "v1.2.0"

	info := Get()
	assert.Equal(t, "Helper", info.Project)
	assert.Contains(t, String(), "Helper v1.2.0")
}
