package vision

import (
	"image"
	"math/rand"
)

// ScriptFrame describes what the synthetic detector reports for one frame.
type ScriptFrame struct {
	HasFace bool
	Eyes    int
	CenterX float64
	CenterY float64
	Scale   float64
}

// Synthetic is the offline/testing detector backend: it replays a fixed
// detection script instead of running a cascade, so analyzer behavior can be
// exercised deterministically without real video.
type Synthetic struct {
	script   []ScriptFrame
	pos      int
	lastEyes int
}

func NewSynthetic(script []ScriptFrame) *Synthetic {
	return &Synthetic{script: script}
}

// NewSyntheticSpeaker generates a script resembling a seated speaker: a face
// present in every frame with small positional jitter, eyes found most of the
// time. Used by offline demos.
func NewSyntheticSpeaker(frames int, seed int64) *Synthetic {
	rnd := rand.New(rand.NewSource(seed))
	script := make([]ScriptFrame, frames)
	for i := range script {
		eyes := 2
		if rnd.Float64() < 0.15 {
			eyes = rnd.Intn(2)
		}
		script[i] = ScriptFrame{
			HasFace: true,
			Eyes:    eyes,
			CenterX: 320 + rnd.Float64()*12 - 6,
			CenterY: 240 + rnd.Float64()*12 - 6,
			Scale:   180 + rnd.Float64()*10 - 5,
		}
	}
	return &Synthetic{script: script}
}

func (s *Synthetic) Faces(_ *image.Gray) ([]Face, error) {
	if s.pos >= len(s.script) {
		s.pos++
		s.lastEyes = 0
		return nil, nil
	}
	f := s.script[s.pos]
	s.pos++
	s.lastEyes = f.Eyes

	if !f.HasFace {
		return nil, nil
	}
	return []Face{{CenterX: f.CenterX, CenterY: f.CenterY, Scale: f.Scale, Quality: 10}}, nil
}

func (s *Synthetic) EyeCount(_ *image.Gray, _ Face) (int, error) {
	return s.lastEyes, nil
}
