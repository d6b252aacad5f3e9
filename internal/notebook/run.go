package notebook

import (
	"context"
)

// Run drives one full remote transcription: start the kernel, wait for it to
// finish, then pull the subtitle artifacts into destDir.
func (c *Client) Run(ctx context.Context, kernelDir, destDir string) ([]string, error) {
	if err := c.Push(ctx, kernelDir); err != nil {
		return nil, err
	}
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}
	return c.PullOutput(ctx, destDir)
}
