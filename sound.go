package ember

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"go.uber.org/zap"
)

// soundSource resolves decoded sounds. Implemented by *Cache.
type soundSource interface {
	Sound(key string) (*SoundData, bool)
}

// SoundManager mixes every playing Sound into one stereo stream. The host
// pulls the mix from the audio goroutine through Stream or Reader, so all
// mixer state is guarded by mu.
type SoundManager struct {
	mu     sync.Mutex
	format beep.Format
	mixer  *beep.Mixer
	master *effects.Volume
	sounds []*Sound
	muted  bool

	enabled bool
	cache   soundSource
	log     *zap.Logger
}

func newSoundManager(cfg AudioConfig, log *zap.Logger) *SoundManager {
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	mixer := &beep.Mixer{}
	return &SoundManager{
		format:  beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 4},
		mixer:   mixer,
		master:  &effects.Volume{Streamer: mixer, Base: 2},
		enabled: cfg.Enabled,
		log:     log,
	}
}

func (m *SoundManager) link(cache soundSource) {
	m.cache = cache
}

// Format returns the output format of the mix.
func (m *SoundManager) Format() beep.Format {
	return m.format
}

// Enabled reports whether the host should attach an audio output.
func (m *SoundManager) Enabled() bool {
	return m.enabled
}

// Sound is one playing instance of a cached sound.
type Sound struct {
	Key string

	m      *SoundManager
	ctrl   *beep.Ctrl
	volume *effects.Volume
	silent bool
	done   bool
}

// Play starts the cached sound key. loop repeats it until stopped.
func (m *SoundManager) Play(key string, loop bool) (*Sound, error) {
	if m.cache == nil {
		return nil, fmt.Errorf("%w: sound %q", ErrAssetNotFound, key)
	}
	data, ok := m.cache.Sound(key)
	if !ok {
		return nil, fmt.Errorf("%w: sound %q", ErrAssetNotFound, key)
	}

	var src beep.Streamer
	buffered := data.Buffer.Streamer(0, data.Buffer.Len())
	if loop {
		src = beep.Loop(-1, buffered)
	} else {
		src = buffered
	}
	if data.Format.SampleRate != m.format.SampleRate {
		src = beep.Resample(4, data.Format.SampleRate, m.format.SampleRate, src)
	}

	s := &Sound{Key: key, m: m}
	s.ctrl = &beep.Ctrl{Streamer: src}
	s.volume = &effects.Volume{Streamer: s.ctrl, Base: 2}

	m.mu.Lock()
	defer m.mu.Unlock()
	s.volume.Silent = m.muted
	// The callback runs inside Stream, with mu held.
	m.mixer.Add(beep.Seq(s.volume, beep.Callback(func() { s.done = true })))
	m.sounds = append(m.sounds, s)
	m.prune()
	m.log.Debug("sound started", zap.String("key", key), zap.Bool("loop", loop))
	return s, nil
}

// prune drops finished sounds. Callers hold mu.
func (m *SoundManager) prune() {
	kept := m.sounds[:0]
	for _, s := range m.sounds {
		if !s.done {
			kept = append(kept, s)
		}
	}
	clear(m.sounds[len(kept):])
	m.sounds = kept
}

// Playing returns the number of sounds that have not finished.
func (m *SoundManager) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.sounds)
}

// SetMute silences or restores every sound, including ones started later.
func (m *SoundManager) SetMute(mute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = mute
	for _, s := range m.sounds {
		s.volume.Silent = mute || s.silent
	}
}

// Muted reports whether output is muted.
func (m *SoundManager) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// SetVolume sets the master gain, linear in [0, 1].
func (m *SoundManager) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	applyGain(m.master, v)
}

// StopAll stops every sound.
func (m *SoundManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sounds {
		s.ctrl.Streamer = nil
		s.done = true
	}
	m.mixer.Clear()
	m.sounds = m.sounds[:0]
}

// Stream fills samples with the current mix. It always fills the whole
// buffer, with silence when nothing plays, so it never ends.
func (m *SoundManager) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := m.master.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

// Err always returns nil.
func (m *SoundManager) Err() error { return nil }

// Reader returns the mix as interleaved little-endian float32 stereo PCM,
// the layout ebiten's audio.NewPlayerF32 reads.
func (m *SoundManager) Reader() io.Reader {
	return &pcmReader{src: m}
}

type pcmReader struct {
	src beep.Streamer
	buf [][2]float64
}

const pcmFrameBytes = 8

func (r *pcmReader) Read(p []byte) (int, error) {
	frames := len(p) / pcmFrameBytes
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]
	n, _ := r.src.Stream(buf)
	for i := 0; i < n; i++ {
		off := i * pcmFrameBytes
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(buf[i][0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(buf[i][1])))
	}
	return n * pcmFrameBytes, nil
}

// applyGain maps a linear gain onto a base-2 Volume effect.
func applyGain(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(gain)
}

// Stop ends playback. A stopped sound cannot be resumed.
func (s *Sound) Stop() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.ctrl.Streamer = nil
	s.done = true
}

// Pause holds playback at the current position.
func (s *Sound) Pause() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.ctrl.Paused = true
}

// Resume continues a paused sound.
func (s *Sound) Resume() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.ctrl.Paused = false
}

// Paused reports whether the sound is paused.
func (s *Sound) Paused() bool {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.ctrl.Paused
}

// SetVolume sets this sound's gain, linear in [0, 1].
func (s *Sound) SetVolume(v float64) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.silent = v <= 0
	applyGain(s.volume, v)
	s.volume.Silent = s.silent || s.m.muted
}

// Done reports whether the sound finished or was stopped.
func (s *Sound) Done() bool {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.done
}
