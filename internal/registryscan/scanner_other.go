//go:build !windows

package registryscan

// Scan is a no-op on non-Windows platforms: there is no registry to
// enumerate, so it returns an empty result without error (spec.md §8).
func Scan() ([]Entry, error) {
	return nil, nil
}
