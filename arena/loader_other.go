//go:build !unix

package arena

const mmapSupported = false

func mapAnon(int) ([]byte, error) {
	return nil, ErrMmapUnsupported
}
