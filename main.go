package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/surface_sampler/internal/colormap"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/internal/sampler"
	"github.com/ecopia-map/surface_sampler/pkg"
	"github.com/ecopia-map/surface_sampler/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/surface_sampler/tools"
	"github.com/golang/glog"
)

const VERSION = "1.0.0"

const logo = `
  ___ _   _ _ __ / _| __ _  ___ ___     ___  __ _ _ __ ___  _ __ | | ___ _ __
 / __| | | | '__| |_ / _' |/ __/ _ \   / __|/ _' | '_ ' _ \| '_ \| |/ _ \ '__|
 \__ \ |_| | |  |  _| (_| | (_|  __/   \__ \ (_| | | | | | | |_) | |  __/ |
 |___/\__,_|_|  |_|  \__,_|\___\___|___|___/\__,_|_| |_| |_| .__/|_|\___|_|
   Point cloud to height grid sampler written in golang |____|  |_|
   Copyright YYYY - ecopia-map
`

func main() {
	// glog writes to files by default, the tool logs to the console unless told otherwise
	_ = flag.Set("logtostderr", "true")

	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Fatal("Please specify a subcommand [sample|merge|transform].")
	}
	cmd, args := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case tools.CommandSample:
		mainCommandSample(ctx, args)
	case tools.CommandMerge:
		mainCommandMerge(ctx, args)
	case tools.CommandTransform:
		mainCommandTransform(ctx, args)
	default:
		glog.Fatalf("Unrecognized command [%q]. Command must be one of [sample|merge|transform]", cmd)
	}
}

func mainCommandSample(ctx context.Context, args []string) {
	flags, err := tools.ParseFlagsForCommandSample(args)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}
	opts, ok := prepareCommand(flags.SurfaceFlags, pipeline.CommandSample)
	if !ok {
		return
	}

	defer timeTrack(time.Now(), "sample")
	runner := pkg.NewSurfaceSampler(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts))
	run(ctx, runner, opts)
}

func mainCommandMerge(ctx context.Context, args []string) {
	flags, err := tools.ParseFlagsForCommandMerge(args)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}
	opts, ok := prepareCommand(flags.SurfaceFlags, pipeline.CommandMerge)
	if !ok {
		return
	}

	defer timeTrack(time.Now(), "merge")
	runner := pkg.NewSurfaceMerger(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts))
	run(ctx, runner, opts)
}

func mainCommandTransform(ctx context.Context, args []string) {
	flags, err := tools.ParseFlagsForCommandTransform(args)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}
	opts, ok := prepareCommand(flags.SurfaceFlags, pipeline.CommandTransform)
	if !ok {
		return
	}
	if opts.Matrix == nil {
		glog.Fatal("Error parsing input parameters: the transform command requires -matrix")
	}

	defer timeTrack(time.Now(), "transform")
	runner := pkg.NewSurfaceTransformer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts))
	run(ctx, runner, opts)
}

// Handles help, version and logging flags, then builds and validates the options.
// Returns false when there is nothing left to run.
func prepareCommand(flags tools.SurfaceFlags, command pipeline.Command) (*pipeline.Options, bool) {
	if *flags.Help {
		showHelp()
		return nil, false
	}
	if *flags.Version {
		printVersion()
		return nil, false
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}
	glog.V(1).Infoln("flags", tools.FmtJSONString(flags))

	opts, msg, ok := newOptions(flags, command)
	if ok {
		msg, ok = validateOptions(opts)
	}
	if !ok {
		glog.Fatal("Error parsing input parameters: " + msg)
	}
	return opts, true
}

// Puts the flag values inside an Options struct
func newOptions(flags tools.SurfaceFlags, command pipeline.Command) (*pipeline.Options, string, bool) {
	opts := &pipeline.Options{
		Input:            *flags.Input,
		Output:           *flags.Output,
		Width:            *flags.Width,
		Height:           *flags.Height,
		XScale:           float32(*flags.XScale),
		YScale:           float32(*flags.YScale),
		ZScale:           float32(*flags.ZScale),
		XOffset:          float32(*flags.XOffset),
		YOffset:          float32(*flags.YOffset),
		ZOffset:          float32(*flags.ZOffset),
		ElevationOffset:  float32(*flags.ElevationOffset),
		Mode:             sampler.ParseMode(*flags.Mode),
		Fit:              *flags.Fit,
		FillHoles:        *flags.FillHoles,
		ColorMode:        colormap.ParseMode(*flags.ColorMode),
		FolderProcessing: *flags.FolderProcessing,
		Recursive:        *flags.RecursiveFolderProcessing,
		Workers:          *flags.Workers,
		Command:          command,
	}

	if *flags.Matrix != "" {
		matrix, err := tools.ParseMatrix(*flags.Matrix)
		if err != nil {
			return nil, "invalid matrix: " + err.Error(), false
		}
		opts.Matrix = matrix
	}
	return opts, "", true
}

// Validates the input options provided to the command line tool checking
// that input and output folders/files exist and that the grid is well defined
func validateOptions(opts *pipeline.Options) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if opts.Output == "" {
		return "Output folder not specified", false
	}
	if err := tools.CreateDirectoryIfDoesNotExist(opts.Output); err != nil {
		return "Cannot create output folder: " + err.Error(), false
	}

	if opts.Mode == "" {
		return "mode should be one of AVERAGE, MIN or MAX", false
	}
	if opts.ColorMode == "" {
		return "color-mode should be one of COLOR, INTENSITY or COLOR_WITH_INTENSITY", false
	}
	if opts.XScale <= 0 || opts.YScale <= 0 {
		return "xscale and yscale must be positive", false
	}
	if opts.FillHoles < 0 {
		return "fill-holes cannot be negative", false
	}

	if !opts.Fit {
		if opts.Width <= 0 || opts.Height <= 0 {
			return "width and height must be positive when -fit is disabled", false
		}
		if tools.IsFloatEqual(float64(opts.ZScale), 0) {
			return "zscale cannot be zero when -fit is disabled", false
		}
	}

	return "", true
}

func run(ctx context.Context, runner pkg.ISurfaceRunner, opts *pipeline.Options) {
	if err := runner.Run(ctx, opts); err != nil {
		glog.Fatal("Error while sampling: ", err)
	}
	tools.LogOutput("Conversion Completed")
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("surface_sampler converts PLY point clouds in quantized height grids, exported as colored PLY surfaces, PLY meshes and PNG heightmaps")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: surface_sampler [sample|merge|transform] [flags]")
	fmt.Println("Run a command with -help to list its flags.")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
