package dub

import (
	"context"
	"io/fs"
	"os"

	"github.com/alnah/go-dubline/internal/media"
)

type tempDirCreator interface {
	MkdirTemp(dir, pattern string) (string, error)
}

type fileWriter interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

type fileRemover interface {
	RemoveAll(path string) error
}

type dirCreator interface {
	MkdirAll(path string, perm fs.FileMode) error
}

type audioMixer interface {
	DelayMix(ctx context.Context, clips []media.Clip, outputPath string) error
}

type osTempDirCreator struct{}

func (osTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

type osFileWriter struct{}

func (osFileWriter) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

type osFileRemover struct{}

func (osFileRemover) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

type osDirCreator struct{}

func (osDirCreator) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}
