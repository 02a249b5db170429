package pipeline

import (
	"strings"

	"github.com/ecopia-map/surface_sampler/internal/colormap"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/sampler"
)

type Command string

const (
	// One surface per input file
	CommandSample Command = "SAMPLE"

	// All the input files are merged in a single cloud and sampled on one grid
	CommandMerge Command = "MERGE"

	// Every input file is sampled, transformed by Matrix and sampled again
	CommandTransform Command = "TRANSFORM"
)

func (c Command) String() string {
	switch c {
	case CommandSample:
		return "SAMPLE"
	case CommandMerge:
		return "MERGE"
	case CommandTransform:
		return "TRANSFORM"
	}
	return ""
}

func ParseCommand(value string) Command {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	switch Command(normalizedValue) {
	case CommandSample, CommandMerge, CommandTransform:
		return Command(normalizedValue)
	}
	return ""
}

// Contains the options needed to turn point clouds into surfaces
type Options struct {
	Input            string            // Input PLY file/folder
	Output           string            // Output folder
	Width            int               // Grid width in cells, ignored if Fit is set
	Height           int               // Grid height in cells, ignored if Fit is set
	XScale           float32           // Cell size along x
	YScale           float32           // Cell size along y
	ZScale           float32           // Height quantization step, automatic if <= 0 and Fit is set
	XOffset          float32           // Grid origin x, ignored if Fit is set
	YOffset          float32           // Grid origin y, ignored if Fit is set
	ZOffset          float32           // Height origin, ignored if Fit is set
	ElevationOffset  float32           // Vertical offset to apply to points before sampling
	Mode             sampler.Mode      // Aggregation of the points falling in the same cell
	Fit              bool              // Derives grid dimensions and offsets from the cloud bounding box
	FillHoles        int               // Kernel size of the hole filling pass, 0 disables it
	ColorMode        colormap.Mode     // Shading of the exported surface
	Matrix           *geometry.Matrix4 // Transform for the transform command, pre-transform of points otherwise
	FolderProcessing bool              // Enables the processing of all PLY files in folder
	Recursive        bool              // Recursive lookup of PLY files in subfolders
	Workers          int               // Number of workers, 0 means one per CPU

	Command Command
}

// Returns the sampler options corresponding to the manual grid definition
func (opt *Options) SamplerOptions() sampler.Options {
	return sampler.Options{
		Width:   opt.Width,
		Height:  opt.Height,
		XScale:  opt.XScale,
		YScale:  opt.YScale,
		ZScale:  opt.ZScale,
		XOffset: opt.XOffset,
		YOffset: opt.YOffset,
		ZOffset: opt.ZOffset,
		Mode:    opt.Mode,
	}
}

func (opt *Options) Copy() *Options {
	newOpt := *opt
	if opt.Matrix != nil {
		matrix := *opt.Matrix
		newOpt.Matrix = &matrix
	}
	return &newOpt
}
