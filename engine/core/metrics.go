package core

import "github.com/spaghettifunk/ember/engine/containers"

const frameAverageCount = 30

// FrameMetrics keeps a rolling frame time average over the last
// frameAverageCount frames and a frames per second counter refreshed once a
// second.
type FrameMetrics struct {
	msTimes       *containers.RingQueue[float64]
	msSum         float64
	frames        int32
	accumulatedMS float64
	fps           float64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{
		msTimes: containers.NewRingQueue[float64](frameAverageCount),
	}
}

// Update records one frame that took frameElapsed seconds.
func (m *FrameMetrics) Update(frameElapsed float64) {
	frameMS := frameElapsed * 1000.0
	if m.msTimes.IsFull() {
		oldest, _ := m.msTimes.Dequeue()
		m.msSum -= oldest
	}
	_ = m.msTimes.Enqueue(frameMS)
	m.msSum += frameMS

	m.frames++
	m.accumulatedMS += frameMS
	if m.accumulatedMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedMS -= 1000
		m.frames = 0
	}
}

func (m *FrameMetrics) FPS() float64 {
	return m.fps
}

// FrameTime is the average frame time in ms.
func (m *FrameMetrics) FrameTime() float64 {
	if m.msTimes.IsEmpty() {
		return 0
	}
	return m.msSum / float64(m.msTimes.Len())
}

// Frame returns the frames per second and the average frame time in ms.
func (m *FrameMetrics) Frame() (float64, float64) {
	return m.fps, m.FrameTime()
}
