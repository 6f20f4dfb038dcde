package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tattlemuss/vpk0"
)

type CliCommand struct {
	fn       func(args []string) error
	flagset  *flag.FlagSet
	argsdesc string // argument description
	desc     string
}

// PrintCmdUsage describes one command and any flags it takes.
func PrintCmdUsage(name string, cmd CliCommand) {
	fmt.Printf("%s %s - %s\n", name, cmd.argsdesc, cmd.desc)
	hasFlags := false
	cmd.flagset.VisitAll(func(*flag.Flag) { hasFlags = true })
	if hasFlags {
		cmd.flagset.PrintDefaults()
	}
}

func PrintUsage(commands map[string]CliCommand) {
	fmt.Println()
	fmt.Println("Usage: vpk0 <command> [arguments]")
	fmt.Println("Commands available:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("    %-10s %-22s %s\n", name, cmd.argsdesc, cmd.desc)
	}
}

// configPath is where the replay config for a file lives: the same path
// with its extension swapped.
func configPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + vpk0.ConfigExt
}

// percent is part as a percentage of whole, 0 for an empty whole.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

type CompressConfig struct {
	verbose bool
	verify  bool
}

// Compress a file, replaying the trees from a config next to it if present.
func CommandCompress(inputPath string, outputPath string, cfg CompressConfig) error {
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	enc := &vpk0.Encoder{Method: vpk0.DefaultMethod}
	cp := configPath(inputPath)
	if fh, err := os.Open(cp); err == nil {
		c, err := vpk0.ReadConfig(fh)
		fh.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", cp, err)
		}
		enc = c.Encoder()
		if cfg.verbose {
			fmt.Printf("Replaying trees from %s (method %d)\n", cp, c.Method)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	packed, err := enc.Encode(input)
	if err != nil {
		return err
	}

	if cfg.verify {
		unpacked, err := vpk0.DecodeBytes(packed)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if !bytes.Equal(unpacked, input) {
			return errors.New("failed to verify pack<->unpack round trip, there is a bug")
		}
		if cfg.verbose {
			fmt.Println("\tVerify OK")
		}
	}
	if cfg.verbose {
		fmt.Printf("Original size:    %6d\n", len(input))
		fmt.Printf("Packed size:      %6d (%.1f%%)\n", len(packed), percent(len(packed), len(input)))
	}
	return os.WriteFile(outputPath, packed, 0644)
}

type DecompressConfig struct {
	maxSize int // refuse larger outputs, 0 for no limit
}

// Decompress a file and leave a replay config next to the output.
func CommandDecompress(inputPath string, outputPath string, cfg DecompressConfig) error {
	packed, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	dec := vpk0.Decoder{MaxSize: cfg.maxSize}
	unpacked, err := dec.Decode(packed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, unpacked, 0644); err != nil {
		return err
	}

	header, trees, err := vpk0.Info(bytes.NewReader(packed))
	if err != nil {
		return err
	}
	fh, err := os.Create(configPath(outputPath))
	if err != nil {
		return err
	}
	if _, err := vpk0.NewConfig(header, trees).WriteTo(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func CommandInfo(inputPath string) error {
	fh, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer fh.Close()
	header, trees, err := vpk0.Info(fh)
	if err != nil {
		return err
	}
	fmt.Printf("Original size: %d bytes\n", header.Size)
	fmt.Printf("VPK encoded with method %d (%s)\n", header.Method, header.Method)
	fmt.Printf("Tree offsets: %s\n", trees.Offsets)
	fmt.Printf("Tree lengths: %s\n", trees.Lengths)
	return nil
}

type StatsConfig struct {
	method    int
	graphPath string // match length graph, skipped if empty
	distPath  string // match distance graph, skipped if empty
}

func CommandStats(inputPath string, cfg StatsConfig) error {
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	method, err := vpk0.LookupMethod(cfg.method)
	if err != nil {
		return err
	}
	st, err := vpk0.Analyze(input, method)
	if err != nil {
		return err
	}
	lz4Size, err := lz4PackedSize(input)
	if err != nil {
		return err
	}

	fmt.Println("===== Complete =====")
	fmt.Printf("Method:           %s\n", st.Method)
	fmt.Printf("Original size:    %6d\n", st.Size)
	fmt.Printf("Packed size:      %6d (%.1f%%)\n", st.PackedSize, percent(st.PackedSize, st.Size))
	fmt.Printf("LZ4 block size:   %6d (%.1f%%)\n", lz4Size, percent(lz4Size, st.Size))
	fmt.Printf("Matches:          %6d covering %d bytes (%.2f%%)\n", st.Matches, st.MatchBytes,
		percent(st.MatchBytes, st.Size))
	fmt.Printf("Literals:         %6d\n", st.Literals)
	fmt.Printf("Tree offsets:     %s\n", st.Trees.Offsets)
	fmt.Printf("Tree lengths:     %s\n", st.Trees.Lengths)

	if cfg.graphPath != "" {
		if err := scatterIntMap(cfg.graphPath, st.LengthHist); err != nil {
			return err
		}
	}
	if cfg.distPath != "" {
		if err := scatterIntMap(cfg.distPath, st.DistanceHist); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	compressFlags := flag.NewFlagSet("c", flag.ExitOnError)
	decompressFlags := flag.NewFlagSet("d", flag.ExitOnError)
	infoFlags := flag.NewFlagSet("i", flag.ExitOnError)
	statsFlags := flag.NewFlagSet("stats", flag.ExitOnError)
	helpFlags := flag.NewFlagSet("help", flag.ExitOnError)

	compressOptVerbose := compressFlags.Bool("verbose", false, "verbose output")
	compressOptVerify := compressFlags.Bool("verify", false, "unpack the result and compare")
	decompressOptMax := decompressFlags.Int("maxsize", 0, "refuse containers claiming more bytes than this (0 = no limit)")
	statsOptMethod := statsFlags.Int("method", int(vpk0.DefaultMethod), "method (0=one-sample, 1=two-sample)")
	statsOptGraph := statsFlags.String("graph", "", "write match length histogram to this SVG")
	statsOptDist := statsFlags.String("distgraph", "", "write match distance histogram to this SVG")
	var commands map[string]CliCommand

	cmdCompress := func(args []string) error {
		compressFlags.Parse(args)
		files := compressFlags.Args()
		if len(files) != 2 {
			fmt.Println("'c' command: expected <input> <output> arguments")
			os.Exit(1)
		}
		cfg := CompressConfig{verbose: *compressOptVerbose, verify: *compressOptVerify}
		return CommandCompress(files[0], files[1], cfg)
	}

	cmdDecompress := func(args []string) error {
		decompressFlags.Parse(args)
		files := decompressFlags.Args()
		if len(files) != 2 {
			fmt.Println("'d' command: expected <input> <output> arguments")
			os.Exit(1)
		}
		return CommandDecompress(files[0], files[1], DecompressConfig{maxSize: *decompressOptMax})
	}

	cmdInfo := func(args []string) error {
		infoFlags.Parse(args)
		files := infoFlags.Args()
		if len(files) != 1 {
			fmt.Println("'i' command: expected <input> argument")
			os.Exit(1)
		}
		return CommandInfo(files[0])
	}

	cmdStats := func(args []string) error {
		statsFlags.Parse(args)
		files := statsFlags.Args()
		if len(files) != 1 {
			fmt.Println("'stats' command: expected <input> argument")
			os.Exit(1)
		}
		cfg := StatsConfig{method: *statsOptMethod, graphPath: *statsOptGraph, distPath: *statsOptDist}
		return CommandStats(files[0], cfg)
	}

	cmdHelp := func(args []string) error {
		helpFlags.Parse(args)
		names := helpFlags.Args()
		if len(names) > 0 {
			cmd, pres := commands[names[0]]
			if !pres {
				fmt.Println("error: unknown command for help")
				PrintUsage(commands)
				os.Exit(1)
			}
			PrintCmdUsage(names[0], cmd)
		} else {
			PrintUsage(commands)
		}
		return nil
	}

	commands = map[string]CliCommand{
		"c":     {cmdCompress, compressFlags, "<input> <output>", "compress (replays <input>" + vpk0.ConfigExt + " if present)"},
		"d":     {cmdDecompress, decompressFlags, "<input> <output>", "decompress and write <output>" + vpk0.ConfigExt},
		"i":     {cmdInfo, infoFlags, "<input>", "print header and trees"},
		"stats": {cmdStats, statsFlags, "<input>", "report how a raw file packs"},
		"help":  {cmdHelp, helpFlags, "", "list commands or describe a single command"},
	}

	if len(os.Args) < 2 {
		fmt.Println("error: expected a command")
		PrintUsage(commands)
		os.Exit(1)
	}

	cmd, pres := commands[os.Args[1]]
	if !pres {
		fmt.Println("error: unknown command")
		PrintUsage(commands)
		os.Exit(1)
	}

	err := cmd.fn(os.Args[2:])
	if err != nil {
		fmt.Println("Error in", os.Args[1], err.Error())
		os.Exit(1)
	}
}
