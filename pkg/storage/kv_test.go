package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemKV(t *testing.T) {
	kv := NewMemKV()

	if _, err := kv.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key: err = %v, want ErrNotFound", err)
	}

	if err := kv.Set([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("got %q, want %q", got, "v1")
	}

	// Overwrite.
	if err := kv.Set([]byte("k"), []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = kv.Get([]byte("k"))
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("after overwrite got %q, want %q", got, "v2")
	}

	if err := kv.Delete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key: err = %v, want ErrNotFound", err)
	}

	// Deleting an absent key is fine.
	if err := kv.Delete([]byte("k")); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestMemKV_CopiesValues(t *testing.T) {
	kv := NewMemKV()
	val := []byte("original")
	if err := kv.Set([]byte("k"), val); err != nil {
		t.Fatalf("set: %v", err)
	}

	val[0] = 'X'
	got, err := kv.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("original")) {
		t.Errorf("stored value aliased the caller's slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := kv.Get([]byte("k"))
	if !bytes.Equal(again, []byte("original")) {
		t.Errorf("returned value aliased the stored slice: %q", again)
	}
}

func TestPebbleKV(t *testing.T) {
	kv, err := NewPebbleKV(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()

	if _, err := kv.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key: err = %v, want ErrNotFound", err)
	}

	if err := kv.Set([]byte("ask:1"), []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get([]byte("ask:1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"id":"1"}`)) {
		t.Errorf("got %q", got)
	}

	if err := kv.Delete([]byte("ask:1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get([]byte("ask:1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key: err = %v, want ErrNotFound", err)
	}
}
