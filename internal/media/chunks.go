package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Chunk is one fixed-duration slice of the normalized audio stream. Index is
// the 0-based sequence position extracted from the generated file name; it is
// the single source of truth for ordering downstream.
type Chunk struct {
	Index int
	Path  string
}

// chunkPattern matches the ffmpeg segment muxer's output naming.
var chunkPattern = regexp.MustCompile(`^part_(\d+)\.wav$`)

// NormalizedFileName is the intermediate 16kHz mono file written before splitting.
const NormalizedFileName = "reduced_audio.wav"

// ChunkIndex extracts the sequence index from a chunk file name.
func ChunkIndex(name string) (int, bool) {
	match := chunkPattern.FindStringSubmatch(filepath.Base(name))
	if match == nil {
		return 0, false
	}
	index, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return index, true
}

// ListChunks returns the chunk files in workDir sorted ascending by sequence
// index. Directory listing order is never trusted.
func ListChunks(workDir string) ([]Chunk, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	var chunks []Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		index, ok := ChunkIndex(entry.Name())
		if !ok {
			continue
		}
		chunks = append(chunks, Chunk{Index: index, Path: filepath.Join(workDir, entry.Name())})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// ClearChunks removes chunk artifacts left over from a prior run so a stale
// part file is never picked up by the next segmentation.
func ClearChunks(workDir string) error {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear chunks: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := ChunkIndex(name); !ok && name != NormalizedFileName {
			continue
		}
		if err := os.Remove(filepath.Join(workDir, name)); err != nil {
			return fmt.Errorf("clear chunks: %w", err)
		}
	}
	return nil
}

// ChunkCount returns ceil(duration / chunkSeconds).
func ChunkCount(durationSeconds float64, chunkSeconds int) int {
	if durationSeconds <= 0 || chunkSeconds <= 0 {
		return 0
	}
	count := int(durationSeconds) / chunkSeconds
	if durationSeconds > float64(count*chunkSeconds) {
		count++
	}
	return count
}

// LastChunkSeconds returns the nominal duration of the final chunk.
func LastChunkSeconds(durationSeconds float64, chunkSeconds int) float64 {
	count := ChunkCount(durationSeconds, chunkSeconds)
	if count == 0 {
		return 0
	}
	remainder := durationSeconds - float64((count-1)*chunkSeconds)
	if remainder <= 0 {
		return float64(chunkSeconds)
	}
	return remainder
}
