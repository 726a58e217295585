package vision

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// PigoDetector runs the pigo pixel-intensity cascade for faces and its pupil
// localiser for eyes. Both cascades are the stock files shipped with pigo.
type PigoDetector struct {
	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade

	// MinFaceSize filters out spurious tiny detections.
	MinFaceSize int
	// MinQuality is the cascade score below which detections are dropped.
	MinQuality float32
}

// NewPigoDetector loads the facefinder and puploc cascade files.
func NewPigoDetector(facefinderPath, puplocPath string) (*PigoDetector, error) {
	faceBytes, err := os.ReadFile(facefinderPath)
	if err != nil {
		return nil, fmt.Errorf("read facefinder cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(faceBytes)
	if err != nil {
		return nil, fmt.Errorf("unpack facefinder cascade: %w", err)
	}

	plcBytes, err := os.ReadFile(puplocPath)
	if err != nil {
		return nil, fmt.Errorf("read puploc cascade: %w", err)
	}
	plc, err := pigo.NewPuplocCascade().UnpackCascade(plcBytes)
	if err != nil {
		return nil, fmt.Errorf("unpack puploc cascade: %w", err)
	}

	return &PigoDetector{
		classifier:  classifier,
		puploc:      plc,
		MinFaceSize: 40,
		MinQuality:  5.0,
	}, nil
}

func (d *PigoDetector) imageParams(img *image.Gray) pigo.ImageParams {
	b := img.Bounds()
	return pigo.ImageParams{
		Pixels: img.Pix,
		Rows:   b.Dy(),
		Cols:   b.Dx(),
		Dim:    img.Stride,
	}
}

func (d *PigoDetector) Faces(img *image.Gray) ([]Face, error) {
	b := img.Bounds()
	maxSize := b.Dx()
	if b.Dy() < maxSize {
		maxSize = b.Dy()
	}
	if maxSize < d.MinFaceSize {
		return nil, nil
	}

	params := pigo.CascadeParams{
		MinSize:     d.MinFaceSize,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: d.imageParams(img),
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	faces := make([]Face, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.MinQuality {
			continue
		}
		faces = append(faces, Face{
			CenterX: float64(det.Col),
			CenterY: float64(det.Row),
			Scale:   float64(det.Scale),
			Quality: det.Q,
		})
	}
	return faces, nil
}

// EyeCount probes the two pupil regions of the face with the puploc cascade
// and reports how many localised.
func (d *PigoDetector) EyeCount(img *image.Gray, face Face) (int, error) {
	params := d.imageParams(img)

	count := 0
	// Pupil seed offsets relative to the face square, per the pigo reference
	// detector.
	for _, colOff := range []float64{-0.175, 0.185} {
		seed := pigo.Puploc{
			Row:      int(face.CenterY - 0.075*face.Scale),
			Col:      int(face.CenterX + colOff*face.Scale),
			Scale:    float32(face.Scale) * 0.25,
			Perturbs: 10,
		}
		eye := d.puploc.RunDetector(seed, params, 0.0, false)
		if eye != nil && eye.Row > 0 && eye.Col > 0 {
			count++
		}
	}
	return count, nil
}
