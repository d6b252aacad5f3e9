package translate

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter measures prompt size so grouping can stay inside the model's
// comfortable request budget.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter builds a counter for the given chat model, falling back to
// the cl100k_base encoding for models tiktoken does not know.
func NewTokenCounter(model string) (TokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: load encoding: %w", err)
		}
	}
	return &tiktokenCounter{encoding: encoding}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// runeCounter approximates token counts by rune length. Only used when the
// tiktoken data cannot be loaded, so grouping still bounds request size.
type runeCounter struct{}

func (runeCounter) Count(text string) int {
	return utf8.RuneCountInString(text) / 4
}
