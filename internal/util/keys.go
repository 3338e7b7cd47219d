package util

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
)

var canonical cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	canonical = em
}

// Fingerprint returns a stable hash of m. Map keys are sorted by the
// deterministic CBOR encoding, so equal maps hash equal regardless of
// insertion order. A nil and an empty map share one fingerprint.
func Fingerprint(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "0", nil
	}
	b, err := canonical.Marshal(m)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16), nil
}

// RegistryKey is the identity of one shared driver handle.
func RegistryKey(driverType string, m map[string]any) (string, error) {
	fp, err := Fingerprint(m)
	if err != nil {
		return "", err
	}
	return driverType + ":" + fp, nil
}
