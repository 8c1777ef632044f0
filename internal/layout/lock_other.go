//go:build !unix

package layout

import "os"

// Without flock the in-process lock in core is the only serialization.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
