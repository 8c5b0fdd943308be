package klogger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinLockMutualExclusion(t *testing.T) {
	var (
		l       SpinLock
		counter int
		wg      sync.WaitGroup
	)
	const workers, iterations = 8, 1000

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}

func TestSpinLockTryLock(t *testing.T) {
	var l SpinLock

	require.True(t, l.TryLock())
	assert.False(t, l.TryLock())
	l.Unlock()
	assert.True(t, l.TryLock())
}

func TestSpinLockUnlockOfUnlockedPanics(t *testing.T) {
	var l SpinLock
	assert.Panics(t, l.Unlock)
}

func TestWithTransportReturnsBodyResult(t *testing.T) {
	tr := &recordTransport{}
	w := NewSyncWriter(tr)

	n := WithTransport(w, func(t Transport) int {
		t.PutByte('o')
		t.PutByte('k')
		return 2
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, "ok", string(tr.out))
}

func TestWithTransportReleasesLockOnPanic(t *testing.T) {
	w := NewSyncWriter(&recordTransport{})

	assert.Panics(t, func() {
		WithTransport(w, func(Transport) int { panic("device fault") })
	})

	require.True(t, w.lock.TryLock(), "lock still held after panic")
	w.lock.Unlock()
}

func TestSyncWriterWrite(t *testing.T) {
	tr := &recordTransport{}
	w := NewSyncWriter(tr)

	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = w.WriteString("def")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, "abcdef", string(tr.out))
}

func TestSyncWriterWritesDoNotInterleave(t *testing.T) {
	tr := &recordTransport{}
	w := NewSyncWriter(tr)
	chunks := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc", "dddddddd"}
	const rounds = 500

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(c string) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				w.WriteString(c)
			}
		}(c)
	}
	wg.Wait()

	require.Len(t, tr.out, len(chunks)*rounds*8)
	for i := 0; i < len(tr.out); i += 8 {
		chunk := tr.out[i : i+8]
		for _, b := range chunk {
			require.Equal(t, chunk[0], b, "interleaved chunk at offset %d: %q", i, chunk)
		}
	}
}
