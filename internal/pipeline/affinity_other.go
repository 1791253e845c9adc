//go:build !linux

package pipeline

func setAffinity(int) error {
	return ErrAffinityUnsupported
}
