package vision

import (
	"errors"
	"image"
	"image/draw"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/stat"
)

const (
	ReasonDecodeFailed = "decode_failed"
	ReasonNoFrames     = "no_frames"
)

// movementDivisor normalizes the average inter-frame face movement (pixels)
// onto the 0-100 stability scale.
const movementDivisor = 10.0

// Result is the session-level visual summary for one recorded answer.
type Result struct {
	FramesAnalyzed int `json:"frames_analyzed"`
	FramesWithFace int `json:"frames_with_face"`
	FramesWithEyes int `json:"frames_with_eyes"`

	FaceDetectionRate float64 `json:"face_detection_rate"`
	EyeContactRate    float64 `json:"eye_contact_rate"`

	// PositionStability and SizeConsistency need at least two face-bearing
	// frames; otherwise they stay 0.
	PositionStability float64 `json:"position_stability"`
	SizeConsistency   float64 `json:"size_consistency"`

	// Composite indicators consumed by the scoring engine.
	Confidence  float64 `json:"confidence"`
	Nervousness float64 `json:"nervousness"`

	HasFace bool `json:"has_face"`

	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

type Analyzer struct {
	detector Detector

	// Stride analyzes every Nth frame for throughput.
	Stride int
	// MaxWidth caps frame width before detection; wider frames get scaled
	// down.
	MaxWidth int
}

func NewAnalyzer(d Detector) *Analyzer {
	return &Analyzer{detector: d, Stride: 5, MaxWidth: 640}
}

// DegradedResult is recorded when the frame stream could not be opened.
func DegradedResult(reason string) Result {
	return Result{Degraded: true, Reason: reason}
}

// Analyze consumes the frame stream and aggregates per-frame detections. A
// stream that fails before yielding any frame degrades to a zero Result; a
// mid-stream failure keeps what was already analyzed.
func (a *Analyzer) Analyze(src FrameSource) Result {
	stride := a.Stride
	if stride < 1 {
		stride = 1
	}

	var res Result
	var centers [][2]float64
	var areas []float64

	frameIdx := 0
	for {
		frame, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if res.FramesAnalyzed == 0 {
				return DegradedResult(ReasonDecodeFailed)
			}
			break
		}
		frameIdx++
		if frameIdx%stride != 0 {
			continue
		}

		res.FramesAnalyzed++

		gray := a.toGray(frame)
		face, found := a.canonicalFace(gray)
		if !found {
			continue
		}
		res.FramesWithFace++
		centers = append(centers, [2]float64{face.CenterX, face.CenterY})
		areas = append(areas, face.Area())

		if eyes, err := a.detector.EyeCount(gray, face); err == nil && eyes >= 2 {
			res.FramesWithEyes++
		}
	}

	if res.FramesAnalyzed == 0 {
		return DegradedResult(ReasonNoFrames)
	}

	res.FaceDetectionRate = float64(res.FramesWithFace) / float64(res.FramesAnalyzed) * 100
	res.EyeContactRate = float64(res.FramesWithEyes) / float64(res.FramesAnalyzed) * 100
	res.PositionStability = positionStability(centers)
	res.SizeConsistency = sizeConsistency(areas)
	res.HasFace = res.FaceDetectionRate > 10.0

	// Sustained gaze is the strongest visual proxy for composure, so eye
	// contact carries half the weight.
	res.Confidence = stat.ClampScore(
		res.FaceDetectionRate*0.3 + res.EyeContactRate*0.5 + res.PositionStability*0.2)
	res.Nervousness = stat.ClampScore(
		(100-res.PositionStability)*0.6 + (100-res.SizeConsistency)*0.4)

	return res
}

// canonicalFace picks the largest detected face (closest to camera) as the
// frame's subject.
func (a *Analyzer) canonicalFace(gray *image.Gray) (Face, bool) {
	faces, err := a.detector.Faces(gray)
	if err != nil || len(faces) == 0 {
		return Face{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Area() > best.Area() {
			best = f
		}
	}
	return best, true
}

func (a *Analyzer) toGray(img image.Image) *image.Gray {
	b := img.Bounds()

	if a.MaxWidth > 0 && b.Dx() > a.MaxWidth {
		scale := float64(a.MaxWidth) / float64(b.Dx())
		dst := image.NewGray(image.Rect(0, 0, a.MaxWidth, int(float64(b.Dy())*scale)))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}

	if g, ok := img.(*image.Gray); ok {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// positionStability averages the Euclidean movement between canonical face
// centers of consecutive face-bearing frames.
func positionStability(centers [][2]float64) float64 {
	if len(centers) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(centers); i++ {
		dx := centers[i][0] - centers[i-1][0]
		dy := centers[i][1] - centers[i-1][1]
		total += math.Sqrt(dx*dx + dy*dy)
	}
	avg := total / float64(len(centers)-1)
	return math.Max(0, 100-avg/movementDivisor)
}

// sizeConsistency scores the spread of face bounding-box area, a proxy for a
// steady distance from the camera.
func sizeConsistency(areas []float64) float64 {
	if len(areas) < 2 {
		return 0
	}
	return math.Max(0, 100-stat.CoefVar(areas)*100)
}
