// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/audstream/utils"
)

const (
	// DefaultQuality trades filter length for stop band attenuation.
	DefaultQuality = 5
	MaxQuality     = 10

	// resamplerBufferSize is the number of input samples processed per pass.
	resamplerBufferSize = 160

	maxInt32   = math.MaxInt32
	sampleSize = 4
)

// Resampler converts planar float32 audio between two sample rates with a
// windowed-sinc polyphase filter. It keeps per-channel filter history so a
// stream can be fed in chunks of any size. It is not safe for concurrent use.
//
// A run is bracketed by Start and End; End clears the history.
type Resampler struct {
	channels int
	inRate   int
	outRate  int
	num      int // reduced inRate
	den      int // reduced outRate
	quality  int

	cutoff      float32
	oversample  int
	filtLen     int
	intAdvance  int
	fracAdvance int
	sincTable   []float32

	mem          []float32
	memAllocSize int

	lastSample   []int
	magicSamples []int
	sampFracNum  []int

	started bool
	out     [][]float32
}

// NewResampler returns a resampler for channels planar channels from inRate
// to outRate Hz. quality ranges from 0 to MaxQuality.
func NewResampler(channels, inRate, outRate, quality int) (*Resampler, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrChannelMismatch, channels)
	}
	if quality < 0 || quality > MaxQuality {
		return nil, fmt.Errorf("%w: %d", ErrBadQuality, quality)
	}

	r := &Resampler{
		channels:     channels,
		quality:      quality,
		lastSample:   make([]int, channels),
		magicSamples: make([]int, channels),
		sampFracNum:  make([]int, channels),
		out:          make([][]float32, channels),
	}

	if err := r.setRate(inRate, outRate); err != nil {
		return nil, err
	}
	if err := r.updateFilter(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Resampler) Channels() int { return r.channels }
func (r *Resampler) InRate() int   { return r.inRate }
func (r *Resampler) OutRate() int  { return r.outRate }
func (r *Resampler) Quality() int  { return r.quality }
func (r *Resampler) Started() bool { return r.started }

// Ratio returns inRate/outRate reduced to lowest terms.
func (r *Resampler) Ratio() (num, den int) { return r.num, r.den }

// FilterLength returns the number of taps of the current filter.
func (r *Resampler) FilterLength() int { return r.filtLen }

// Oversample returns the window oversampling factor of the current filter.
func (r *Resampler) Oversample() int { return r.oversample }

// SetQuality rebuilds the filter for quality. Filter history carries over.
func (r *Resampler) SetQuality(quality int) error {
	if quality < 0 || quality > MaxQuality {
		return fmt.Errorf("%w: %d", ErrBadQuality, quality)
	}
	if quality == r.quality {
		return nil
	}
	r.quality = quality

	return r.updateFilter()
}

// SetRate changes the conversion rates mid-stream. Filter history and the
// fractional phase carry over.
func (r *Resampler) SetRate(inRate, outRate int) error {
	if inRate == r.inRate && outRate == r.outRate {
		return nil
	}
	if err := r.setRate(inRate, outRate); err != nil {
		return err
	}

	return r.updateFilter()
}

func (r *Resampler) setRate(inRate, outRate int) error {
	if inRate <= 0 || outRate <= 0 {
		return fmt.Errorf("%w: %d -> %d", ErrInvalidRate, inRate, outRate)
	}

	oldDen := r.den
	g := gcd(inRate, outRate)

	r.inRate, r.outRate = inRate, outRate
	r.num, r.den = inRate/g, outRate/g

	if oldDen > 0 {
		for i := range r.sampFracNum {
			r.sampFracNum[i] = r.sampFracNum[i] * r.den / oldDen
			if r.sampFracNum[i] >= r.den {
				r.sampFracNum[i] = r.den - 1
			}
		}
	}

	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func (r *Resampler) updateFilter() error {
	oldLength := r.filtLen
	oldAllocSize := r.memAllocSize
	q := qualityMap[r.quality]

	filtLen := q.baseLength
	oversample := q.oversample
	var cutoff float32

	if r.num > r.den {
		// Downsampling: narrow the passband and lengthen the filter to match.
		cutoff = q.downsampleBandwidth * float32(r.den) / float32(r.num)
		filtLen = int(uint64(filtLen) * uint64(r.num) / uint64(r.den))
		filtLen = ((filtLen - 1) &^ 7) + 8

		for _, k := range [...]int{2, 4, 8, 16} {
			if k*r.den < r.num {
				oversample >>= 1
			}
		}
		oversample = max(oversample, 1)
	} else {
		cutoff = q.upsampleBandwidth
	}

	if maxInt32/sampleSize/r.den < filtLen {
		return fmt.Errorf("%w: %d taps for ratio %d/%d", ErrFilterTooLarge, filtLen, r.num, r.den)
	}

	r.intAdvance = r.num / r.den
	r.fracAdvance = r.num % r.den
	r.cutoff = cutoff
	r.oversample = oversample
	r.filtLen = filtLen

	if need := filtLen * r.den; len(r.sincTable) < need {
		r.sincTable = make([]float32, need)
	}

	half := filtLen / 2
	for i := range r.den {
		for j := range filtLen {
			x := float64(float32(j-half+1)) - float64(float32(float64(i)/float64(r.den)))
			r.sincTable[i*filtLen+j] = float32(sinc(cutoff, x, filtLen, q.window))
		}
	}

	if minAlloc := filtLen - 1 + resamplerBufferSize; minAlloc > r.memAllocSize {
		if maxInt32/sampleSize/r.channels < minAlloc {
			return fmt.Errorf("%w: %d samples of history", ErrFilterTooLarge, minAlloc)
		}
		mem := make([]float32, r.channels*minAlloc)
		copy(mem, r.mem)
		r.mem = mem
		r.memAllocSize = minAlloc
	}

	switch {
	case !r.started:
		clear(r.mem)
	case filtLen > oldLength:
		r.growHistory(oldLength, oldAllocSize)
	case filtLen < oldLength:
		r.shrinkHistory(oldLength)
	}

	return nil
}

// growHistory moves each channel's history to the new stride and pads it
// with zeros at the front, going backwards over channels so no data is
// overwritten before it is moved.
func (r *Resampler) growHistory(oldLength, oldAllocSize int) {
	stride := r.memAllocSize
	mem := r.mem

	for i := r.channels - 1; i >= 0; i-- {
		magic := r.magicSamples[i]
		olen := oldLength + 2*magic

		for j := oldLength - 2 + magic; j >= 0; j-- {
			mem[i*stride+j+magic] = mem[i*oldAllocSize+j]
		}
		for j := range magic {
			mem[i*stride+j] = 0
		}
		r.magicSamples[i] = 0

		if r.filtLen > olen {
			j := 0
			for ; j < olen-1; j++ {
				mem[i*stride+r.filtLen-2-j] = mem[i*stride+olen-2-j]
			}
			for ; j < r.filtLen-1; j++ {
				mem[i*stride+r.filtLen-2-j] = 0
			}
			r.lastSample[i] += (r.filtLen - olen) / 2
		} else {
			r.magicSamples[i] = (olen - r.filtLen) / 2
			for j := range r.filtLen - 1 + r.magicSamples[i] {
				mem[i*stride+j] = mem[i*stride+j+r.magicSamples[i]]
			}
		}
	}
}

// shrinkHistory keeps the samples the shorter filter no longer covers as
// "magic" samples, fed back in as input on the next call.
func (r *Resampler) shrinkHistory(oldLength int) {
	stride := r.memAllocSize

	for i := range r.channels {
		oldMagic := r.magicSamples[i]
		r.magicSamples[i] = (oldLength - r.filtLen) / 2

		for j := range r.filtLen - 1 + r.magicSamples[i] + oldMagic {
			r.mem[i*stride+j] = r.mem[i*stride+j+r.magicSamples[i]]
		}
		r.magicSamples[i] += oldMagic
	}
}

// sinc evaluates the windowed sinc at x for a filter of n taps.
func sinc(cutoff float32, x float64, n int, window []float64) float64 {
	abs := float64(float32(math.Abs(x)))
	if abs < 1e-6 {
		return float64(cutoff)
	}
	if abs > 0.5*float64(n) {
		return 0
	}

	xx := float64(float32(x * float64(cutoff)))
	w := utils.InterpolateTable(window, float64(float32(math.Abs(2*x/float64(n)))))

	return float64(cutoff) * math.Sin(math.Pi*xx) / (math.Pi * xx) * w
}

// Start begins a run.
func (r *Resampler) Start() error {
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	return nil
}

// End finishes a run and clears the filter history.
func (r *Resampler) End() error {
	if !r.started {
		return ErrNotStarted
	}
	r.started = false

	clear(r.lastSample)
	clear(r.magicSamples)
	clear(r.sampFracNum)
	clear(r.mem)

	return nil
}

// Reset ends the current run, if any.
func (r *Resampler) Reset() {
	if r.started {
		_ = r.End()
	}
}

// Resample converts the first length samples of each channel and returns
// the produced samples, one slice per channel. The returned slices are owned
// by the resampler and valid until the next call. Equal rates pass the input
// through unchanged.
func (r *Resampler) Resample(channels [][]float32, length int) ([][]float32, error) {
	if !r.started {
		return nil, ErrNotStarted
	}
	if len(channels) != r.channels {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrChannelMismatch, len(channels), r.channels)
	}
	for _, ch := range channels {
		if length < 0 || length > len(ch) {
			return nil, fmt.Errorf("%w: length %d, channel holds %d", ErrInvalidLength, length, len(ch))
		}
	}

	if r.num == r.den {
		for i, ch := range channels {
			r.out[i] = append(r.out[i][:0], ch[:length]...)
		}
		return r.out, nil
	}

	for i, ch := range channels {
		capacity := (length+r.magicSamples[i])*r.den/r.num + 2
		if cap(r.out[i]) < capacity {
			r.out[i] = make([]float32, 0, capacity)
		}
		r.out[i] = r.processChannel(i, ch[:length], r.out[i][:0])
	}

	return r.out, nil
}

func (r *Resampler) processChannel(ch int, in, out []float32) []float32 {
	filtOffs := r.filtLen - 1
	xlen := r.memAllocSize - filtOffs
	base := ch * r.memAllocSize

	if r.magicSamples[ch] != 0 {
		out = r.drainMagic(ch, out)
	}

	for len(in) > 0 {
		chunk := min(len(in), xlen)
		copy(r.mem[base+filtOffs:], in[:chunk])

		var consumed int
		consumed, out = r.processNative(ch, chunk, out)
		in = in[consumed:]
	}

	return out
}

// drainMagic resamples the magic samples left in history by a filter change.
func (r *Resampler) drainMagic(ch int, out []float32) []float32 {
	n := r.magicSamples[ch]
	base := ch * r.memAllocSize
	filtOffs := r.filtLen - 1

	consumed, out := r.processNative(ch, n, out)
	r.magicSamples[ch] -= consumed

	if left := r.magicSamples[ch]; left != 0 {
		copy(r.mem[base+filtOffs:base+filtOffs+left], r.mem[base+filtOffs+consumed:])
	}

	return out
}

// processNative filters inLen samples placed after the history of channel
// ch, then shifts the history by the number of samples consumed.
func (r *Resampler) processNative(ch, inLen int, out []float32) (int, []float32) {
	out = r.basicDirect(ch, inLen, out)

	consumed := min(inLen, r.lastSample[ch])
	r.lastSample[ch] -= consumed

	base := ch * r.memAllocSize
	copy(r.mem[base:base+r.filtLen-1], r.mem[base+consumed:])

	return consumed, out
}

func (r *Resampler) basicDirect(ch, inLen int, out []float32) []float32 {
	n := r.filtLen
	lastSample := r.lastSample[ch]
	fracNum := r.sampFracNum[ch]
	mem := r.mem[ch*r.memAllocSize : (ch+1)*r.memAllocSize]

	for lastSample < inLen {
		sinct := r.sincTable[fracNum*n : fracNum*n+n]
		x := mem[lastSample : lastSample+n]

		var a0, a1, a2, a3 float64
		for j := 0; j < n; j += 4 {
			a0 += float64(sinct[j]) * float64(x[j])
			a1 += float64(sinct[j+1]) * float64(x[j+1])
			a2 += float64(sinct[j+2]) * float64(x[j+2])
			a3 += float64(sinct[j+3]) * float64(x[j+3])
		}
		out = append(out, float32(a0+a1+a2+a3))

		lastSample += r.intAdvance
		fracNum += r.fracAdvance
		if fracNum >= r.den {
			fracNum -= r.den
			lastSample++
		}
	}

	r.lastSample[ch] = lastSample
	r.sampFracNum[ch] = fracNum

	return out
}
