package tools

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ecopia-map/surface_sampler/internal/pipeline"
)

const plyExtension = ".ply"

type FileFinder interface {
	GetPlyFilesToProcess(opts *pipeline.Options) ([]string, error)
	GetPlyFilesToMerge(opts *pipeline.Options) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetPlyFilesToProcess(opts *pipeline.Options) ([]string, error) {
	// If folder processing is not enabled then the ply file is given by -input flag, otherwise look for ply files
	// in -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return f.getPlyFilesFromInputFolder(opts.Input, opts.Recursive)
}

// Merging always reads a folder unless the input is a single file
func (f *StandardFileFinder) GetPlyFilesToMerge(opts *pipeline.Options) ([]string, error) {
	info, err := os.Stat(opts.Input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{opts.Input}, nil
	}

	return f.getPlyFilesFromInputFolder(opts.Input, opts.Recursive)
}

func (f *StandardFileFinder) getPlyFilesFromInputFolder(input string, recursive bool) ([]string, error) {
	var plyFiles = make([]string, 0)

	baseInfo, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	err = filepath.Walk(
		input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			} else if !info.IsDir() && strings.ToLower(filepath.Ext(info.Name())) == plyExtension {
				plyFiles = append(plyFiles, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	sort.Strings(plyFiles)
	return plyFiles, nil
}
