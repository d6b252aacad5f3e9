package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// Cue is one subtitle entry with timeline-absolute times in seconds.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders seconds as the SRT time format HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatClock renders seconds as HH:MM:SS, used by the plain-text transcript.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// ParseTimestamp converts an SRT timestamp (comma or period millisecond
// separator) back to seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatSRT renders cues as SRT blocks separated by blank lines. Cue indexes
// are used as given; merge renumbers globally.
func FormatSRT(cues []Cue) string {
	var sb strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			cue.Index,
			FormatTimestamp(cue.Start),
			FormatTimestamp(cue.End),
			strings.TrimSpace(cue.Text),
		)
	}
	return sb.String()
}

// FormatTranscript renders cues as plain timestamped text, one line per cue.
func FormatTranscript(cues []Cue) string {
	var sb strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&sb, "%s: %s\n\n", FormatClock(cue.Start), strings.TrimSpace(cue.Text))
	}
	return sb.String()
}
