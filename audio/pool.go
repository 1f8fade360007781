// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/ik5/audstream/internal/pool"

// ResamplerKey identifies interchangeable resamplers.
type ResamplerKey struct {
	Channels int
	InRate   int
	OutRate  int
	Quality  int
}

// ResamplerPool keeps idle resamplers per configuration. Released
// resamplers are ended so the next user starts from clean history.
// It is safe for concurrent use.
type ResamplerPool struct {
	p *pool.Pool[ResamplerKey, *Resampler]
}

// NewResamplerPool keeps up to depth idle resamplers per key. A depth of 0
// or less uses pool.DefaultDepth.
func NewResamplerPool(depth int) *ResamplerPool {
	if depth <= 0 {
		depth = pool.DefaultDepth
	}

	return &ResamplerPool{
		p: pool.New(depth,
			func(k ResamplerKey) (*Resampler, error) {
				return NewResampler(k.Channels, k.InRate, k.OutRate, k.Quality)
			},
			func(r *Resampler) error {
				r.Reset()
				return nil
			}),
	}
}

// Acquire returns a resampler for key, not yet started.
func (p *ResamplerPool) Acquire(key ResamplerKey) (*Resampler, error) {
	return p.p.Acquire(key)
}

// Release hands r back to the pool.
func (p *ResamplerPool) Release(r *Resampler) error {
	return p.p.Release(r)
}

// Idle returns the number of idle resamplers kept for key.
func (p *ResamplerPool) Idle(key ResamplerKey) int {
	return p.p.Idle(key)
}
