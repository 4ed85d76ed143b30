// Command gowinrt resolves WinRT types from metadata, generates Go projections for them
// and downloads the SDK contract metadata.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gowinrt"
	"gowinrt/internal"
	"gowinrt/internal/config"
	"gowinrt/internal/declarations"
	"gowinrt/internal/generation"
	"gowinrt/internal/identity"
	"gowinrt/internal/invocation"
	"gowinrt/internal/metadata"
	"gowinrt/internal/metadata/reader"
	"gowinrt/internal/native"
	"gowinrt/internal/observability"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, string(os.PathListSeparator)) }

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func main() {
	var configPath = flag.String("config", "", "The path to a TOML configuration file.")
	var metadataPaths pathList
	flag.Var(&metadataPaths, "metadataPath", "A .winmd file or a directory searched for them. May be repeated.")
	var metricsAddr = flag.String("metricsAddr", "", "Address serving Prometheus metrics, e.g. :9090.")
	var logLevel = flag.String("logLevel", "", "One of debug, info, warn or error.")
	flag.Usage = func() {
		fmt.Println("App that binds, inspects and generates WinRT projections from metadata.")
		fmt.Println()
		fmt.Println("Usage: gowinrt [flags] <resolve|id|generate|download> [arguments]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if len(metadataPaths) > 0 {
		cfg.MetadataPaths = metadataPaths
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	setLoggers(logger)

	if cfg.MetricsAddr != "" {
		go serveMetrics(logger, cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	command, args := flag.Arg(0), flag.Args()[1:]
	switch command {
	case "resolve":
		err = resolve(ctx, cfg, args)
	case "id":
		err = printIDs(ctx, cfg, args)
	case "generate":
		err = generate(ctx, cfg, args)
	case "download":
		err = download(ctx, cfg, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.Level = atomicLevel
	return loggerConfig.Build()
}

func setLoggers(logger *zap.Logger) {
	gowinrt.SetLogger(logger)
	metadata.SetLogger(logger.Named("metadata"))
	reader.SetLogger(logger.Named("reader"))
	declarations.SetLogger(logger.Named("declarations"))
	identity.SetLogger(logger.Named("identity"))
	invocation.SetLogger(logger.Named("invocation"))
	native.SetLogger(logger.Named("native"))
	generation.SetLogger(logger.Named("generation"))
}

func serveMetrics(logger *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

// open indexes the configured metadata, downloading the SDK contracts first when none is found
func open(ctx context.Context, cfg *config.Config) (*gowinrt.Engine, error) {
	files, err := reader.FindMetadataFiles(cfg.MetadataPaths...)
	if err != nil || len(files) == 0 {
		gowinrt.Logger().Warn("no metadata found, downloading",
			zap.Strings("paths", cfg.MetadataPaths),
			zap.String("package", cfg.Download.Package))
		if _, err := reader.NewDownloader(cfg.Download.Package, cfg.Download.Version).Download(ctx, cfg.Download.Output); err != nil {
			return nil, err
		}
		cfg.MetadataPaths = []string{cfg.Download.Output}
	}
	return gowinrt.Open(cfg)
}

func resolve(ctx context.Context, cfg *config.Config, names []string) error {
	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, name := range names {
		text, err := engine.Describe(name)
		if err != nil {
			return err
		}
		fmt.Print(text)
	}
	return nil
}

func printIDs(ctx context.Context, cfg *config.Config, names []string) error {
	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, name := range names {
		declaration, err := engine.Resolve(name)
		if err != nil {
			return err
		}
		id, err := engine.GenerateID(declaration)
		if err != nil {
			return err
		}
		fmt.Printf("%s {%s}\n", name, id)
	}
	return nil
}

func generate(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("generate", flag.ExitOnError)
	var inputFilePath = flags.String("input", "", "The path to a file listing one type name per line.")
	var packageName = flags.String("packageName", cfg.Generate.Package, "The name of the package with generated code.")
	var outputPath = flags.String("outputPath", cfg.Generate.Output, "The path where all generated files will be placed.")
	var forceClean = flags.Bool("forceCleanOutput", false, "If given forces cleaning output directory before generation.")
	internal.PanicOnError(flags.Parse(args))

	names := flags.Args()
	if *inputFilePath != "" {
		listed, err := readNames(*inputFilePath)
		if err != nil {
			return err
		}
		names = append(names, listed...)
	}
	if len(names) == 0 {
		return errors.New("no types to generate, pass names or -input")
	}

	err := os.Mkdir(*outputPath, os.ModePerm)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	if err := ClearDirectoryIfNotEmpty(*outputPath, *forceClean); err != nil {
		return err
	}

	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	generator := engine.Generator(*packageName, *outputPath)
	for _, name := range names {
		if err := generator.RegisterName(name); err != nil {
			return err
		}
	}
	written, err := generator.Generate()
	for _, path := range written {
		fmt.Println(path)
	}
	return err
}

func readNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var names []string
	fileScanner := bufio.NewScanner(file)
	for fileScanner.Scan() {
		line := strings.TrimSpace(fileScanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, fileScanner.Err()
}

func download(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("download", flag.ExitOnError)
	var packageName = flags.String("package", cfg.Download.Package, "The NuGet package holding the metadata.")
	var version = flags.String("version", cfg.Download.Version, "A version constraint such as \">= 10.0.22621\". Default: newest stable.")
	var output = flags.String("output", cfg.Download.Output, "The directory receiving the .winmd files.")
	internal.PanicOnError(flags.Parse(args))

	files, err := reader.NewDownloader(*packageName, *version).Download(ctx, *output)
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Println(file)
	}
	return nil
}

func ClearDirectoryIfNotEmpty(path string, silent bool) error {
	directory, err := os.Open(path)
	if err != nil {
		return err
	}
	defer directory.Close()

	_, err = directory.Readdirnames(1)
	if err == io.EOF {
		return nil
	}

	if err != nil {
		return err
	}

	var response string
	if !silent {
		fmt.Print("Output directory is not empty. Continuation will result in removing all output files. Proceed? [Y/n]")
		fmt.Scan(&response)
		if strings.ToUpper(response) != "Y" {
			return errors.New("explicit agreement was not given")
		}
	}

	fmt.Println("Cleaning output directory.")
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
