package testutil

import (
	"os"

	"src.wrepl.sh/pkg/must"
)

// InTempDir changes into a temporary directory, and restores the original
// working directory during cleanup. It returns the path of the temporary
// directory.
func InTempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "wrepl.test")
	if err != nil {
		panic(err)
	}
	oldWd := must.OK1(os.Getwd())
	must.OK(os.Chdir(dir))
	c.Cleanup(func() {
		must.OK(os.Chdir(oldWd))
		os.RemoveAll(dir)
	})
	return dir
}
