package tools

import (
	"flag"

	"github.com/golang/glog"
)

const (
	CommandSample    = "sample"
	CommandMerge     = "merge"
	CommandTransform = "transform"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type SurfaceFlags struct {
	Input                     *string  `json:"input"`
	Output                    *string  `json:"output"`
	Width                     *int     `json:"width"`
	Height                    *int     `json:"height"`
	XScale                    *float64 `json:"xscale"`
	YScale                    *float64 `json:"yscale"`
	ZScale                    *float64 `json:"zscale"`
	XOffset                   *float64 `json:"xoffset"`
	YOffset                   *float64 `json:"yoffset"`
	ZOffset                   *float64 `json:"zoffset"`
	ElevationOffset           *float64 `json:"elevation_offset"`
	Mode                      *string  `json:"mode"`
	Fit                       *bool    `json:"fit"`
	FillHoles                 *int     `json:"fill_holes"`
	ColorMode                 *string  `json:"color_mode"`
	Matrix                    *string  `json:"matrix"`
	FolderProcessing          *bool
	RecursiveFolderProcessing *bool
	Workers                   *int `json:"workers"`
	Silent                    *bool
	LogTimestamp              *bool
	Help                      *bool
	Version                   *bool
}

type FlagsForCommandSample struct {
	SurfaceFlags
}

type FlagsForCommandMerge struct {
	SurfaceFlags
}

type FlagsForCommandTransform struct {
	SurfaceFlags
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	// -v is the glog verbosity on the global flag set
	version := defineBoolFlag("version", "", false, "Displays the version of surface_sampler.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandSample(args []string) (FlagsForCommandSample, error) {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-sample", flag.ContinueOnError)
	surfaceFlags := defineSurfaceFlags(flagCommand)
	surfaceFlags.Matrix = defineStringFlagCommand(flagCommand, "matrix", "", "", "Optional 4x4 row-major matrix (16 comma separated values) applied to the points before sampling.")
	surfaceFlags.FolderProcessing = defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all ply files from input folder. Input must be a folder if specified")

	if err := flagCommand.Parse(args); err != nil {
		return FlagsForCommandSample{}, err
	}

	return FlagsForCommandSample{SurfaceFlags: surfaceFlags}, nil
}

func ParseFlagsForCommandMerge(args []string) (FlagsForCommandMerge, error) {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-merge", flag.ContinueOnError)
	surfaceFlags := defineSurfaceFlags(flagCommand)
	surfaceFlags.Matrix = defineStringFlagCommand(flagCommand, "matrix", "", "", "Optional 4x4 row-major matrix (16 comma separated values) applied to the points before sampling.")

	folderProcessing := true
	surfaceFlags.FolderProcessing = &folderProcessing

	if err := flagCommand.Parse(args); err != nil {
		return FlagsForCommandMerge{}, err
	}

	return FlagsForCommandMerge{SurfaceFlags: surfaceFlags}, nil
}

func ParseFlagsForCommandTransform(args []string) (FlagsForCommandTransform, error) {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-transform", flag.ContinueOnError)
	surfaceFlags := defineSurfaceFlags(flagCommand)
	surfaceFlags.Matrix = defineStringFlagCommand(flagCommand, "matrix", "", "", "4x4 row-major matrix (16 comma separated values) applied to the sampled surface, which is then sampled again.")
	surfaceFlags.FolderProcessing = defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all ply files from input folder. Input must be a folder if specified")

	if err := flagCommand.Parse(args); err != nil {
		return FlagsForCommandTransform{}, err
	}

	return FlagsForCommandTransform{SurfaceFlags: surfaceFlags}, nil
}

// Defines the flags shared by every command
func defineSurfaceFlags(flagCommand *flag.FlagSet) SurfaceFlags {
	return SurfaceFlags{
		Input:                     defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input ply file/folder."),
		Output:                    defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the surfaces."),
		Width:                     defineIntFlagCommand(flagCommand, "width", "w", 0, "Grid width in cells. Ignored when -fit is set."),
		Height:                    defineIntFlagCommand(flagCommand, "height", "", 0, "Grid height in cells. Ignored when -fit is set."),
		XScale:                    defineFloat64FlagCommand(flagCommand, "xscale", "", 0.01, "Cell size along x, in input units."),
		YScale:                    defineFloat64FlagCommand(flagCommand, "yscale", "", 0.01, "Cell size along y, in input units."),
		ZScale:                    defineFloat64FlagCommand(flagCommand, "zscale", "", 0, "Height quantization step. With -fit a value <= 0 derives it from the height range."),
		XOffset:                   defineFloat64FlagCommand(flagCommand, "xoffset", "", 0, "Grid origin along x. Ignored when -fit is set."),
		YOffset:                   defineFloat64FlagCommand(flagCommand, "yoffset", "", 0, "Grid origin along y. Ignored when -fit is set."),
		ZOffset:                   defineFloat64FlagCommand(flagCommand, "zoffset", "", 0, "Height encoded by the raw value 0. Ignored when -fit is set."),
		ElevationOffset:           defineFloat64FlagCommand(flagCommand, "elevation-offset", "z", 0, "Vertical offset to apply to points before sampling."),
		Mode:                      defineStringFlagCommand(flagCommand, "mode", "m", "average", "Aggregation of the points falling in the same cell, can be 'average', 'min' or 'max'."),
		Fit:                       defineBoolFlagCommand(flagCommand, "fit", "", true, "Derives the grid dimensions and origin from the bounding box of the points."),
		FillHoles:                 defineIntFlagCommand(flagCommand, "fill-holes", "", 0, "Kernel size of the hole filling pass, 0 disables it."),
		ColorMode:                 defineStringFlagCommand(flagCommand, "color-mode", "c", "color", "Shading of the exported surface, can be 'color', 'intensity' or 'color-with-intensity'."),
		RecursiveFolderProcessing: defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all .ply files inside the subfolders"),
		Workers:                   defineIntFlagCommand(flagCommand, "workers", "", 0, "Number of parallel workers, 0 uses one per CPU."),
		Silent:                    defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		LogTimestamp:              defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:                      defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
		Version:                   defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of surface_sampler."),
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
