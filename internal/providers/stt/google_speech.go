package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: 16000,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// language example: "en-US", "id-ID"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (Transcription, error) {
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   g.Encoding,
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return Transcription{}, err
	}
	return foldResults(resp.Results), nil
}

// foldResults merges recognition results into one transcription. Long
// recordings come back as several results; the top alternative of each is
// one segment of the same utterance, so concatenate them.
func foldResults(results []*speechpb.SpeechRecognitionResult) Transcription {
	var (
		out     Transcription
		text    []string
		confSum float64
		confN   int
	)
	for _, r := range results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}
		text = append(text, alt.Transcript)
		confSum += float64(alt.Confidence)
		confN++
		for _, w := range alt.Words {
			out.Words = append(out.Words, w.Word)
		}
	}
	out.Text = strings.Join(text, " ")
	if confN > 0 {
		out.Confidence = confSum / float64(confN)
	}

	if len(out.Words) == 0 && out.Text != "" {
		out.Words = SplitWords(out.Text)
	}
	out.WordCount = len(out.Words)
	return out
}
