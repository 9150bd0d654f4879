package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/tgflow/pkg/ports"
)

// SessionStoreContractTest is a reusable test suite that verifies if an
// adapter complies with ports.SessionStore. advance fast-forwards the
// store's clock by the given duration; pass nil when expiry cannot be
// simulated and the TTL cases will be skipped.
func SessionStoreContractTest(t *testing.T, store ports.SessionStore, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		payload := []byte(`{"step":2}`)
		if err := store.Save(ctx, "alpha", payload, 0); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Load(ctx, "alpha")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if string(got) != string(payload) {
			t.Errorf("payload mismatch: got %q, want %q", got, payload)
		}
	})

	t.Run("List_Contains_Saved", func(t *testing.T) {
		if err := store.Save(ctx, "beta", []byte("{}"), 0); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		keys, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, k := range keys {
			if k == "beta" {
				found = true
			}
		}
		if !found {
			t.Errorf("key beta missing from list %v", keys)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Save(ctx, "gamma", []byte("{}"), 0); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.Delete(ctx, "gamma"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Load(ctx, "gamma"); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		// Deleting again must stay silent.
		if err := store.Delete(ctx, "gamma"); err != nil {
			t.Errorf("second delete errored: %v", err)
		}
	})

	t.Run("TTL_Expiry", func(t *testing.T) {
		if advance == nil {
			t.Skip("store cannot simulate expiry")
		}
		if err := store.Save(ctx, "delta", []byte("{}"), time.Minute); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		advance(2 * time.Minute)
		if _, err := store.Load(ctx, "delta"); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound after expiry, got %v", err)
		}
		keys, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		for _, k := range keys {
			if k == "delta" {
				t.Errorf("expired key delta still listed")
			}
		}
	})
}
