// Package vision turns a decoded frame sequence into face/eye detection
// rates and positional stability scores. Detection itself sits behind the
// Detector interface so the real cascade backend and the synthetic scripted
// backend stay interchangeable.
package vision

import "image"

// FrameSource yields decoded frames in order and returns io.EOF when the
// stream is exhausted. Implementations live in the media package.
type FrameSource interface {
	Next() (image.Image, error)
}

// Face is one detected face, reported as a centered bounding square.
type Face struct {
	CenterX float64
	CenterY float64
	Scale   float64 // side of the bounding square, in pixels
	Quality float32 // detector confidence
}

// Area is the bounding-box area used to pick the canonical (largest) face.
func (f Face) Area() float64 { return f.Scale * f.Scale }

type Detector interface {
	// Faces returns every face found in the frame, in no particular order.
	Faces(img *image.Gray) ([]Face, error)

	// EyeCount looks for eyes inside the given face's bounding box.
	EyeCount(img *image.Gray, face Face) (int, error)
}
