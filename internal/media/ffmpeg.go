package media

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// CommandRunner executes an external command. Overridable in tests.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// OutputRunner executes an external command and captures stdout.
type OutputRunner func(ctx context.Context, name string, args ...string) (string, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func defaultOutputRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(output), nil
}

// buildNormalizeArgs re-encodes the source to 16kHz mono keeping only the
// audio stream.
func buildNormalizeArgs(source, dest string) []string {
	return []string{
		"-y",
		"-i", source,
		"-ar", "16000",
		"-ac", "1",
		"-map", "0:a",
		dest,
	}
}

// buildSplitArgs cuts the normalized stream into fixed-length contiguous
// segments without re-encoding, so boundaries are bit-identical across runs.
func buildSplitArgs(normalized string, chunkSeconds int, workDir string) []string {
	return []string{
		"-y",
		"-i", normalized,
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkSeconds),
		"-c", "copy",
		filepath.Join(workDir, "part_%d.wav"),
	}
}

// buildProbeArgs asks ffprobe for the container duration in seconds.
func buildProbeArgs(source string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	}
}
