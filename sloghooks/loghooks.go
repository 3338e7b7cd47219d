// Package sloghooks reports omnicache events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/omnicache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PartialEvery uint64
	ErrorEvery   uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	partialCtr atomic.Uint64
	errorCtr   atomic.Uint64
}

var _ omnicache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DriverResolved(driverType, registryKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("omnicache.driver_resolved",
		"type", driverType,
		"key", registryKey)
}

func (h *Hooks) DriverFallback(requested, used string) {
	if h.l == nil {
		return
	}
	h.l.Warn("omnicache.driver_fallback",
		"requested", requested,
		"used", used)
}

// DriverSetRejected logs the prefix as-is for multi writes; single keys are
// redacted.
func (h *Hooks) DriverSetRejected(key string, isMulti bool) {
	if h.l == nil {
		return
	}
	if isMulti {
		h.l.Warn("omnicache.driver_set_rejected",
			"prefix", key,
			"is_multi", true)
		return
	}
	h.l.Warn("omnicache.driver_set_rejected",
		"key", h.redact(key),
		"is_multi", false)
}

func (h *Hooks) SelfHeal(physicalKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("omnicache.self_heal",
		"key", h.redact(physicalKey),
		"reason", reason)
}

func (h *Hooks) PartialMulti(prefix string, requested, found int) {
	if h.l == nil || !sample(h.opts.PartialEvery, &h.partialCtr) {
		return
	}
	h.l.Debug("omnicache.partial_multi",
		"prefix", prefix,
		"requested", requested,
		"found", found)
}

func (h *Hooks) DriverError(op string, err error) {
	if h.l == nil || !sample(h.opts.ErrorEvery, &h.errorCtr) {
		return
	}
	h.l.Error("omnicache.driver_error",
		"op", op,
		"err", err)
}
