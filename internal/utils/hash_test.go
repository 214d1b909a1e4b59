// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"testing"

	"github.com/MKhiriev/go-trip-keeper/models"
)

const testHashKey = "test-secret-key"

func TestNewHasher_EmptyKeyDisablesHashing(t *testing.T) {
	if h := NewHasher(""); h != nil {
		t.Fatal("expected nil hasher for empty key")
	}
}

func TestHasher_MatchesDirectHMAC(t *testing.T) {
	h := NewHasher(testHashKey)
	data := []byte("test-data")

	mac := hmac.New(sha256.New, []byte(testHashKey))
	mac.Write(data)
	want := hex.EncodeToString(mac.Sum(nil))

	if got := h.SumHex(data); got != want {
		t.Fatalf("unexpected digest\nwant: %s\ngot:  %s", want, got)
	}
	if got := h.SumHex(data); got != want {
		t.Fatal("digest must be deterministic for the same input")
	}
}

func TestHasher_SnapshotPayload(t *testing.T) {
	h := NewHasher(testHashKey)

	snapshot := models.Snapshot{
		models.Trips:    json.RawMessage(`[{"id":"t1","name":"Rome"}]`),
		models.Settings: json.RawMessage(`{"currency":"EUR"}`),
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}

	signature := h.SumHex(body)
	if !h.Verify(body, signature) {
		t.Fatal("expected signature to verify")
	}

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-2] = 'X'
	if h.Verify(tampered, signature) {
		t.Fatal("tampered body must not verify")
	}
}

func TestHasher_DifferentKeys(t *testing.T) {
	data := []byte("same payload")

	a := NewHasher("key-a").SumHex(data)
	b := NewHasher("key-b").SumHex(data)
	if a == b {
		t.Fatal("different keys must produce different digests")
	}
}

func TestHasher_VerifyRejectsGarbage(t *testing.T) {
	h := NewHasher(testHashKey)
	if h.Verify([]byte("data"), "not-hex") {
		t.Fatal("non-hex signature must not verify")
	}
	if h.Verify([]byte("data"), "") {
		t.Fatal("empty signature must not verify")
	}
}

func TestHasher_ConcurrentUse(t *testing.T) {
	h := NewHasher(testHashKey)
	want := h.SumHex([]byte("payload"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := h.SumHex([]byte("payload")); got != want {
					t.Errorf("concurrent digest mismatch: %s", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
