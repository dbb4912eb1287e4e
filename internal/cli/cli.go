// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkovalev/dirtree/internal/config"
	"github.com/mkovalev/dirtree/internal/render"
	"github.com/mkovalev/dirtree/internal/report"
	"github.com/mkovalev/dirtree/internal/search"
	"github.com/mkovalev/dirtree/internal/traverse"
	"github.com/mkovalev/dirtree/internal/types"
	"github.com/mkovalev/dirtree/internal/utils"
)

const (
	rootUse              = "dirtree [folder]"
	rootShortDescription = "generate an ASCII tree report of a directory"
	rootLongDescription  = `dirtree walks a directory tree and writes an ASCII-art rendering of it
to a text file. The report can be annotated with text-search matches and
aggregate statistics. Defaults may be supplied through a ` + config.ConfigFileName + `
configuration file; command-line flags always win.`
	rootUsageExample = `  # Render the current directory into structure.txt
  dirtree

  # Limit depth, include hidden entries, and collect statistics
  dirtree -d 2 -a --stat ./project

  # Annotate files containing "TODO", at most three matches per file
  dirtree -s TODO --max-matches 3 -o todos.txt`

	outputFlagName           = "output"
	outputFlagShorthand      = "o"
	outputFlagDescription    = "output file name"
	defaultOutputFileName    = "structure.txt"
	depthFlagName            = "depth"
	depthFlagShorthand       = "d"
	depthFlagDescription     = "maximum depth to traverse (0 = unbounded)"
	hiddenFlagName           = "include-hidden"
	hiddenFlagShorthand      = "a"
	hiddenFlagDescription    = "include hidden files and folders"
	colorFlagName            = "color"
	colorFlagShorthand       = "c"
	colorFlagDescription     = "color directories, files, and search hits in the report"
	searchFlagName           = "search"
	searchFlagShorthand      = "s"
	searchFlagDescription    = "search file contents for STRING"
	caseFlagName             = "case-sensitive"
	caseFlagDescription      = "make the content search case-sensitive"
	maxMatchesFlagName       = "max-matches"
	maxMatchesFlagDesc       = "maximum number of matches to show per file"
	defaultMaxMatches        = 5
	statFlagName             = "stat"
	statFlagDescription      = "append directory, file, and size statistics to the report"
	verboseFlagName          = "verbose"
	verboseFlagDescription   = "show traversal progress on the console"
	copyFlagName             = "copy"
	copyFlagDescription      = "also copy the report to the system clipboard"
	configFlagName           = "config"
	configFlagDescription    = "explicit configuration file path"
	initUse                  = "init"
	initShortDescription     = "write a default configuration file"
	initGlobalFlagName       = "global"
	initGlobalFlagDesc       = "write the configuration into the global directory"
	initForceFlagName        = "force"
	initForceFlagDescription = "overwrite an existing configuration file"

	errorInvalidMaxMatchesFormat = "max-matches must be at least 1, got %d"
	errorInvalidDepthFormat      = "depth must be zero or greater, got %d"
	errorResolveOutputFormat     = "resolving output path '%s': %w"
	warningClipboardFormat       = "Warning: unable to copy report to clipboard: %v"
	processedEntriesFormat       = "Processed %d entries"
	savedReportFormat            = "Tree saved to: %s\n"
	initializedConfigFormat      = "Configuration written to: %s\n"
)

// runOptions captures the raw flag values before they are merged with the
// file-based configuration into an immutable RunConfig.
type runOptions struct {
	output        string
	depth         int
	includeHidden bool
	colorEnabled  bool
	searchQuery   string
	caseSensitive bool
	maxMatches    int
	statEnabled   bool
	verbose       bool
	copyEnabled   bool
	configPath    string
}

// Execute runs the dirtree application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var options runOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Version:      utils.GetApplicationVersion(),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			targetFolder := ""
			if len(arguments) == 1 {
				targetFolder = arguments[0]
			}
			runConfiguration, resolveError := resolveRunConfig(command, options, targetFolder)
			if resolveError != nil {
				return resolveError
			}
			return runGenerate(runConfiguration)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&options.output, outputFlagName, outputFlagShorthand, defaultOutputFileName, outputFlagDescription)
	flagSet.IntVarP(&options.depth, depthFlagName, depthFlagShorthand, 0, depthFlagDescription)
	flagSet.BoolVarP(&options.includeHidden, hiddenFlagName, hiddenFlagShorthand, false, hiddenFlagDescription)
	flagSet.BoolVarP(&options.colorEnabled, colorFlagName, colorFlagShorthand, false, colorFlagDescription)
	flagSet.StringVarP(&options.searchQuery, searchFlagName, searchFlagShorthand, "", searchFlagDescription)
	flagSet.BoolVar(&options.caseSensitive, caseFlagName, false, caseFlagDescription)
	flagSet.IntVar(&options.maxMatches, maxMatchesFlagName, defaultMaxMatches, maxMatchesFlagDesc)
	flagSet.BoolVar(&options.statEnabled, statFlagName, false, statFlagDescription)
	flagSet.BoolVar(&options.verbose, verboseFlagName, false, verboseFlagDescription)
	flagSet.BoolVar(&options.copyEnabled, copyFlagName, false, copyFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand that writes a default
// configuration file.
func createInitCommand() *cobra.Command {
	var writeGlobal bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			destinationPath, initializeError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  forceOverwrite,
			})
			if initializeError != nil {
				return initializeError
			}
			fmt.Printf(initializedConfigFormat, destinationPath)
			return nil
		},
	}

	initCommand.Flags().BoolVar(&writeGlobal, initGlobalFlagName, false, initGlobalFlagDesc)
	initCommand.Flags().BoolVar(&forceOverwrite, initForceFlagName, false, initForceFlagDescription)
	return initCommand
}

// resolveRunConfig merges command-line flags with the file-based configuration
// and validates the target folder. Flags set explicitly on the command line
// always override configuration file values.
func resolveRunConfig(command *cobra.Command, options runOptions, targetFolder string) (types.RunConfig, error) {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return types.RunConfig{}, loadError
	}

	flagSet := command.Flags()
	if !flagSet.Changed(outputFlagName) && applicationConfiguration.Output != "" {
		options.output = applicationConfiguration.Output
	}
	if !flagSet.Changed(depthFlagName) && applicationConfiguration.Depth != nil {
		options.depth = *applicationConfiguration.Depth
	}
	if !flagSet.Changed(hiddenFlagName) && applicationConfiguration.IncludeHidden != nil {
		options.includeHidden = *applicationConfiguration.IncludeHidden
	}
	if !flagSet.Changed(colorFlagName) && applicationConfiguration.Color != nil {
		options.colorEnabled = *applicationConfiguration.Color
	}
	if !flagSet.Changed(statFlagName) && applicationConfiguration.Stat != nil {
		options.statEnabled = *applicationConfiguration.Stat
	}
	if !flagSet.Changed(verboseFlagName) && applicationConfiguration.Verbose != nil {
		options.verbose = *applicationConfiguration.Verbose
	}
	if !flagSet.Changed(copyFlagName) && applicationConfiguration.Copy != nil {
		options.copyEnabled = *applicationConfiguration.Copy
	}
	if !flagSet.Changed(searchFlagName) && applicationConfiguration.Search.Query != "" {
		options.searchQuery = applicationConfiguration.Search.Query
	}
	if !flagSet.Changed(caseFlagName) && applicationConfiguration.Search.CaseSensitive != nil {
		options.caseSensitive = *applicationConfiguration.Search.CaseSensitive
	}
	if !flagSet.Changed(maxMatchesFlagName) && applicationConfiguration.Search.MaxMatches != nil {
		options.maxMatches = *applicationConfiguration.Search.MaxMatches
	}

	if options.depth < 0 {
		return types.RunConfig{}, fmt.Errorf(errorInvalidDepthFormat, options.depth)
	}
	if options.maxMatches < 1 {
		return types.RunConfig{}, fmt.Errorf(errorInvalidMaxMatchesFormat, options.maxMatches)
	}

	targetPath, resolveTargetError := traverse.ResolveTargetDirectory(targetFolder)
	if resolveTargetError != nil {
		return types.RunConfig{}, resolveTargetError
	}

	outputPath, outputPathError := filepath.Abs(options.output)
	if outputPathError != nil {
		return types.RunConfig{}, fmt.Errorf(errorResolveOutputFormat, options.output, outputPathError)
	}

	return types.RunConfig{
		TargetPath:      targetPath,
		TargetName:      filepath.Base(targetPath),
		OutputPath:      filepath.Clean(outputPath),
		MaxDepth:        options.depth,
		IncludeHidden:   options.includeHidden,
		ColorEnabled:    options.colorEnabled,
		SearchQuery:     options.searchQuery,
		CaseSensitive:   options.caseSensitive,
		MaxMatches:      options.maxMatches,
		StatEnabled:     options.statEnabled,
		Verbose:         options.verbose,
		CopyToClipboard: options.copyEnabled,
	}, nil
}

// newClipboardCopier builds the clipboard backend; tests substitute a stub
// because no system clipboard exists in test environments.
var newClipboardCopier = func() report.Copier {
	return report.NewClipboardService()
}

// runGenerate executes the resolved run: traverse, render, write, echo the
// console preview, and optionally copy the report to the clipboard.
func runGenerate(runConfiguration types.RunConfig) error {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		return loggerInitializationError
	}
	defer func() { _ = loggerInstance.Sync() }()

	statistics := &types.Statistics{}
	var contentSearcher *search.Searcher
	if runConfiguration.SearchActive() {
		contentSearcher = search.NewSearcher(runConfiguration)
	}

	walker := &traverse.Walker{
		Configuration: runConfiguration,
		Statistics:    statistics,
		Searcher:      contentSearcher,
		Logger:        loggerInstance,
	}
	entries, searchResults, walkError := walker.Walk()
	if walkError != nil {
		return walkError
	}
	if runConfiguration.Verbose {
		loggerInstance.Info(fmt.Sprintf(processedEntriesFormat, len(entries)))
	}

	treeRenderer := render.NewRenderer(runConfiguration)
	reportText := treeRenderer.Render(entries, searchResults, statistics)

	reportWriter := report.NewWriter(runConfiguration)
	if writeError := reportWriter.WriteReport(reportText); writeError != nil {
		return writeError
	}

	fmt.Print(treeRenderer.RenderConsolePreview(entries, searchResults, statistics))

	if runConfiguration.CopyToClipboard {
		clipboardService := newClipboardCopier()
		if copyError := clipboardService.Copy(reportText); copyError != nil {
			loggerInstance.Warn(fmt.Sprintf(warningClipboardFormat, copyError))
		}
	}

	fmt.Printf(savedReportFormat, runConfiguration.OutputPath)
	return nil
}
