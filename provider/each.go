package provider

import (
	"context"
	"errors"
	"time"
)

// GetEach implements GetMulti with one Get per key.
// The first error aborts the batch and is returned as-is.
func GetEach(ctx context.Context, s Single, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if _, seen := out[k]; seen {
			continue
		}
		v, ok, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// SetEach implements SetMulti with one Set per item. Every item is attempted;
// errors are joined and ok reports whether all writes were accepted.
func SetEach(ctx context.Context, s Single, items map[string][]byte, ttl time.Duration) (bool, error) {
	all := true
	var errs []error
	for k, v := range items {
		ok, err := s.Set(ctx, k, v, ttl)
		if err != nil {
			errs = append(errs, err)
		}
		if !ok {
			all = false
		}
	}
	return all, errors.Join(errs...)
}

// DelEach implements DelMulti with one Del per key. Every key is attempted.
func DelEach(ctx context.Context, s Single, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := s.Del(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
