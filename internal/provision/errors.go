package provision

import "fmt"

// VolumeResolutionError reports a volume mount that cannot be turned
// into a concrete mount, such as a local path that does not exist.
type VolumeResolutionError struct {
	Container string
	Path      string
	Err       error
}

func (e *VolumeResolutionError) Error() string {
	return fmt.Sprintf("resolving volume %q for container %q: %v", e.Path, e.Container, e.Err)
}

func (e *VolumeResolutionError) Unwrap() error { return e.Err }
