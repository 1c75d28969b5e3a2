package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_EnsureIdempotent(t *testing.T) {
	calls := 0
	r := NewResource("coords", func(context.Context) error {
		calls++
		return nil
	})

	assert.Equal(t, Unloaded, r.State())

	require.NoError(t, r.Ensure(context.Background()))
	assert.Equal(t, Ready, r.State())
	assert.True(t, r.Ready())

	// Second ensure performs no fetch.
	require.NoError(t, r.Ensure(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestResource_FailureRewindsToUnloaded(t *testing.T) {
	calls := 0
	boom := errors.New("network down")
	r := NewResource("embeddings", func(context.Context) error {
		calls++
		if calls == 1 {
			return boom
		}
		return nil
	})

	err := r.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrResourceLoad)
	// Not stuck in Failed: a retry starts from scratch.
	assert.Equal(t, Unloaded, r.State())

	require.NoError(t, r.Ensure(context.Background()))
	assert.Equal(t, Ready, r.State())
	assert.Equal(t, 2, calls)
}

func TestResource_FailureKeepsCauseMatchable(t *testing.T) {
	cause := errors.New("buffer size mismatch")
	r := NewResource("embeddings", func(context.Context) error {
		return cause
	})

	err := r.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrResourceLoad)
	// The wrap carries the underlying cause too, so callers can still
	// classify the failure.
	assert.ErrorIs(t, err, cause)

	deadline := NewResource("tokenizer", func(context.Context) error {
		return context.DeadlineExceeded
	})
	err = deadline.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrResourceLoad)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGroup(t *testing.T) {
	ok := NewResource("a", func(context.Context) error { return nil })
	bad := NewResource("b", func(context.Context) error { return errors.New("nope") })
	never := NewResource("c", func(context.Context) error {
		t.Fatal("should not be reached")
		return nil
	})

	g := NewGroup(ok, bad, never)
	err := g.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrResourceLoad)

	status := g.Status()
	assert.Equal(t, "ready", status["a"])
	assert.Equal(t, "unloaded", status["b"])
	assert.Equal(t, "unloaded", status["c"])
}

func TestFSSource(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.WriteFullFile(fs, "vocab.json", []byte(`["猫"]`), 0644))

	src := FSSource{FS: fs}
	data, err := src.Fetch(context.Background(), "vocab.json")
	require.NoError(t, err)
	assert.Equal(t, `["猫"]`, string(data))

	_, err = src.Fetch(context.Background(), "missing.bin")
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assets/vocab.json" {
			w.Write([]byte(`["猫"]`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := HTTPSource{BaseURL: srv.URL + "/assets"}
	data, err := src.Fetch(context.Background(), "vocab.json")
	require.NoError(t, err)
	assert.Equal(t, `["猫"]`, string(data))

	_, err = src.Fetch(context.Background(), "missing.bin")
	assert.Error(t, err)
}
