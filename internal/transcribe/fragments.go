package transcribe

import (
	"whisperflow/internal/subtitle"
)

// Fragment is the rendered output for one chunk: an SRT fragment and a plain
// transcript fragment, both already shifted into absolute time. Index carries
// the chunk's sequence position so the merger can assemble fragments in order
// no matter when each one finished.
type Fragment struct {
	Index int
	SRT   string
	Text  string
}

// RenderFragment converts one chunk's segments to subtitle text. Timestamps
// are offset by chunkIndex * chunkSeconds so every fragment carries absolute
// positions; cue numbering restarts at 1 per fragment and is renumbered
// globally at merge time.
func RenderFragment(chunkIndex, chunkSeconds int, segments []Segment) Fragment {
	offset := float64(chunkIndex * chunkSeconds)
	cues := make([]subtitle.Cue, 0, len(segments))
	for i, seg := range segments {
		cues = append(cues, subtitle.Cue{
			Index: i + 1,
			Start: seg.Start + offset,
			End:   seg.End + offset,
			Text:  seg.Text,
		})
	}
	return Fragment{
		Index: chunkIndex,
		SRT:   subtitle.FormatSRT(cues),
		Text:  subtitle.FormatTranscript(cues),
	}
}
