// Package notebook drives an alternate transcription path on a remote GPU
// kernel through the kaggle CLI, for URL sources the local pipeline cannot
// download.
package notebook
