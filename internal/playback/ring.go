// SPDX-License-Identifier: EPL-2.0

package playback

import "sync/atomic"

// ringSize holds a little over a second of 48 kHz stereo float audio.
const ringSize = 1 << 19

// ring is a lock-free single-producer single-consumer byte buffer between
// Play and the device callback.
type ring struct {
	buf  [ringSize]byte
	head atomic.Uint64 // Write position (producer)
	tail atomic.Uint64 // Read position (consumer)
}

// push copies as much of b as fits and returns the count written.
func (r *ring) push(b []byte) int {
	head := r.head.Load()
	tail := r.tail.Load()

	n := min(len(b), ringSize-int(head-tail))
	for i := range n {
		r.buf[(head+uint64(i))%ringSize] = b[i]
	}

	r.head.Add(uint64(n))
	return n
}

// pop fills dst from the buffer and returns the count read, always a
// multiple of align so a partial sample frame stays queued.
func (r *ring) pop(dst []byte, align int) int {
	head := r.head.Load()
	tail := r.tail.Load()

	n := min(len(dst), int(head-tail))
	n -= n % align
	for i := range n {
		dst[i] = r.buf[(tail+uint64(i))%ringSize]
	}

	r.tail.Add(uint64(n))
	return n
}

func (r *ring) len() int { return int(r.head.Load() - r.tail.Load()) }

// clear drops everything buffered. The consumer must be stopped.
func (r *ring) clear() {
	r.tail.Store(r.head.Load())
}
