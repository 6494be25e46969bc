package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/urfave/cli/v2"

	"github.com/gpsmapkit/imgcodec/build"
	"github.com/gpsmapkit/imgcodec/config"
	"github.com/gpsmapkit/imgcodec/numbers"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Aliases:            []string{"V"},
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "imgenc"
	app.Usage = "device map image encoder"
	app.Version = "0.3.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"IMGENC_CONFIG"},
			Usage:   "path to the YAML configuration file",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log every encoded unit",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "build",
			Usage:     "Build a map image from a YAML map input",
			ArgsUsage: "INPUT.yaml",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "image file to write"},
				&cli.StringFlag{Name: "reference", Usage: "compare the image against this reference"},
				&cli.BoolFlag{Name: "update-reference", Usage: "store the image as the reference instead of comparing"},
			},
			Action: buildAction,
		},
		{
			Name:      "numbers",
			Usage:     "Print the house-number encoding of every road",
			ArgsUsage: "INPUT.yaml",
			Action:    numbersAction,
		},
		{
			Name:      "inspect",
			Usage:     "Decode a map image and print its contents",
			ArgsUsage: "IMAGE",
			Action:    inspectAction,
		},
		{
			Name:      "verify",
			Usage:     "Compare a map image against a stored reference",
			ArgsUsage: "IMAGE NAME",
			Action:    verifyAction,
		},
	}

	return app
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}

func newLogger(c *cli.Context) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(c.App.ErrWriter))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if c.Bool("verbose") {
		return level.NewFilter(logger, level.AllowDebug())
	}

	return level.NewFilter(logger, level.AllowInfo())
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return cli.Exit(fmt.Sprintf("%s: expected %s", c.Command.Name, c.Command.ArgsUsage), 2)
	}

	return nil
}

func buildAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	m, err := config.LoadMap(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	b, err := build.NewBuilder(cfg.BuildOptions(newLogger(c))...)
	if err != nil {
		return cli.Exit(err, 1)
	}
	img, err := b.Build(c.Context, m)
	if err != nil {
		return cli.Exit(err, 1)
	}

	out := c.String("output")
	if err := os.WriteFile(out, img.Bytes, 0o644); err != nil { //nolint:gosec // image files are not secret
		return cli.Exit(err, 1)
	}
	fmt.Fprintf(c.App.Writer, "wrote %s: %s, %d/%d roads, %d/%d partitions\n",
		out, humanize.Bytes(uint64(img.Size())),
		img.Report.RoadsEncoded, img.Report.Roads,
		img.Report.PartitionsEncoded, img.Report.Partitions)
	for _, d := range img.Report.Diagnostics {
		fmt.Fprintf(c.App.Writer, "  %s\n", d)
	}

	name := c.String("reference")
	if name == "" {
		return nil
	}
	store, err := cfg.ReferenceStore()
	if err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool("update-reference") {
		stats, err := store.Save(name, img.Bytes)
		if err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Fprintf(c.App.Writer, "reference %s updated: %s stored as %s (%s)\n",
			name, humanize.Bytes(uint64(stats.OriginalSize)), humanize.Bytes(uint64(stats.CompressedSize)), stats.Algorithm)

		return nil
	}

	if err := store.Verify(name, img.Bytes); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintf(c.App.Writer, "reference %s matches\n", name)

	return nil
}

func numbersAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	m, err := config.LoadMap(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	enc, err := numbers.NewEncoder(cfg.NumberOptions()...)
	if err != nil {
		return cli.Exit(err, 1)
	}

	for _, r := range m.Roads {
		printRoad(c.App.Writer, enc, r)
	}

	return nil
}

func printRoad(w io.Writer, enc *numbers.Encoder, r build.Road) {
	label := fmt.Sprintf("road %d", r.ID)
	if r.Name != "" {
		label += fmt.Sprintf(" (%s)", r.Name)
	}

	stream, err := enc.Encode(r.Numbers)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", label, err)
		return
	}

	fmt.Fprintf(w, "%s: %d records, %d bits, %s, swapped=%t, baseline=%d\n",
		label, stream.Count, stream.Bits, stream.Format, stream.Swapped, stream.Baseline)
	fmt.Fprintf(w, "  %s\n", hex.EncodeToString(stream.Bytes))
}

func inspectAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	contents, err := build.Inspect(data, cfg.NumberOptions()...)
	if err != nil {
		return cli.Exit(err, 1)
	}
	printContents(c.App.Writer, data, contents)

	return nil
}

func printContents(w io.Writer, data []byte, c *build.Contents) {
	h := c.Header
	fmt.Fprintf(w, "image: %s, version %d, %d-byte blocks, checksum 0x%08X\n",
		humanize.Bytes(uint64(len(data))), h.Version, 1<<h.AlignmentShift(), h.Checksum)

	fmt.Fprintf(w, "partitions: %d\n", h.PartitionCount)
	for i, p := range c.Partitions {
		e := c.Directory[i]
		fmt.Fprintf(w, "  #%d at %d, %d bytes: %d nodes, tables A=%d B=%d C=%d\n",
			i, e.Offset, e.Length, len(p.Nodes), len(p.TableA), len(p.TableB), len(p.TableC))
	}

	fmt.Fprintf(w, "roads: %d (%s)\n", h.RoadCount, humanize.Bytes(uint64(h.NumberLength)))
	for _, r := range c.Roads {
		fmt.Fprintf(w, "  road %d: %d records, %d bytes\n", r.ID, len(r.Descriptors), r.Size)
	}
}

func verifyAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	store, err := cfg.ReferenceStore()
	if err != nil {
		return cli.Exit(err, 1)
	}
	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}

	name := c.Args().Get(1)
	if err := store.Verify(name, data); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintf(c.App.Writer, "reference %s matches\n", name)

	return nil
}
