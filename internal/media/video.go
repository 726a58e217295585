package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"

	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/vision"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

// JPEG stream markers.
var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// mjpegSource walks a concatenated-JPEG payload, decoding one frame per
// Next call. Browser MediaRecorder uploads arrive in this shape when the
// client samples its canvas.
type mjpegSource struct {
	data []byte
	pos  int
}

// NewMJPEGSource returns a vision.FrameSource over an MJPEG byte stream.
func NewMJPEGSource(data []byte) (vision.FrameSource, error) {
	const op = "media.NewMJPEGSource"
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "empty video payload", nil)
	}
	if bytes.Index(data, jpegSOI) < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no jpeg frames in payload", nil)
	}
	return &mjpegSource{data: data}, nil
}

func (s *mjpegSource) Next() (image.Image, error) {
	start := bytes.Index(s.data[s.pos:], jpegSOI)
	if start < 0 {
		return nil, io.EOF
	}
	start += s.pos
	end := bytes.Index(s.data[start+2:], jpegEOI)
	if end < 0 {
		return nil, io.EOF
	}
	end += start + 2 + len(jpegEOI)
	s.pos = end

	img, err := jpeg.Decode(bytes.NewReader(s.data[start:end]))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// SampleJPEGFrames pulls up to n evenly spaced raw JPEG frames out of an
// MJPEG payload, for handing to services that want encoded frames rather
// than decoded images.
func SampleJPEGFrames(data []byte, n int) [][]byte {
	var frames [][]byte
	pos := 0
	for {
		start := bytes.Index(data[pos:], jpegSOI)
		if start < 0 {
			break
		}
		start += pos
		end := bytes.Index(data[start+2:], jpegEOI)
		if end < 0 {
			break
		}
		end += start + 2 + len(jpegEOI)
		frames = append(frames, data[start:end])
		pos = end
	}

	if n <= 0 || len(frames) <= n {
		return frames
	}
	out := make([][]byte, 0, n)
	step := float64(len(frames)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, frames[int(float64(i)*step)])
	}
	return out
}

// imageListSource serves pre-decoded frames, used by tests and by the
// synthetic demo path.
type imageListSource struct {
	frames []image.Image
	next   int
}

// NewImageListSource returns a vision.FrameSource over in-memory frames.
func NewImageListSource(frames []image.Image) vision.FrameSource {
	return &imageListSource{frames: frames}
}

func (s *imageListSource) Next() (image.Image, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	img := s.frames[s.next]
	s.next++
	return img, nil
}
