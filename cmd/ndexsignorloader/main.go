// Command ndexsignorloader downloads pathway data from SIGNOR, normalizes
// each pathway into a styled network and loads it into an NDEx account.
package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rpillich/ndexsignorloader/internal/config"
	"github.com/rpillich/ndexsignorloader/internal/loader"
	"github.com/rpillich/ndexsignorloader/internal/ndex"
	"github.com/rpillich/ndexsignorloader/internal/normalize"
	"github.com/rpillich/ndexsignorloader/internal/signor"
)

// version is set by the release build.
var version = "0.1.0"

// The load plan and visual style ship with the binary so a bare invocation
// works; --loadplan and --style override them.
//
//go:embed loadplan.json
var defaultLoadPlan []byte

//go:embed style.cx
var defaultStyle []byte

type options struct {
	profile      string
	conf         string
	loadPlan     string
	style        string
	iconURL      string
	signorURL    string
	visibility   string
	edgeCollapse bool
	skipDownload bool
	verbose      int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ndexsignorloader <datadir>",
		Short: "Loads SIGNOR pathway data into NDEx",
		Long: `Loads SIGNOR pathway data into NDEx (http://ndexbio.org).

To connect to an NDEx server a configuration file must be passed via
--conf. If --conf is unset, ~/` + config.ConfigFileName + ` is examined.
The file holds one or more TOML profiles:

    [` + config.DefaultProfile + `]
    user = "<NDEx username>"
    password = "<NDEx password>"
    server = "<NDEx server, omit http, ie public.ndexbio.org>"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.verbose)
			if err := run(cmd, opts, args[0]); err != nil {
				log.Error("Caught error", "err", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.profile, "profile", config.DefaultProfile,
		"profile section inside the configuration file to load NDEx credentials from")
	flags.StringVar(&opts.conf, "conf", "",
		"configuration file to load (default ~/"+config.ConfigFileName+")")
	flags.StringVar(&opts.loadPlan, "loadplan", "",
		"alternate load plan mapping SIGNOR columns to network attributes (default: built in)")
	flags.StringVar(&opts.style, "style", "",
		"CX file, or NDEx UUID, of an alternate visual style network (default: built in)")
	flags.StringVar(&opts.iconURL, "iconurl", "https://signor.uniroma2.it/img/signor_logo.png",
		"url of icon set on the __iconurl attribute of the full networks")
	flags.StringVar(&opts.signorURL, "signorurl", "https://signor.uniroma2.it/",
		"base url of the SIGNOR site to download data from")
	flags.StringVar(&opts.visibility, "visibility", "PUBLIC",
		"visibility of newly created networks, PUBLIC or PRIVATE")
	flags.BoolVar(&opts.edgeCollapse, "edgecollapse", false,
		"collapse redundant edges, merging their attributes into lists")
	flags.BoolVar(&opts.skipDownload, "skipdownload", false,
		"skip the download and use files already in <datadir>")
	flags.CountVarP(&opts.verbose, "verbose", "v",
		"increase logging verbosity, repeat for more detail")
	return cmd
}

func setupLogging(verbose int) {
	switch {
	case verbose >= 2:
		log.SetLevel(log.DebugLevel)
	case verbose == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
	log.SetReportTimestamp(true)
}

func run(cmd *cobra.Command, opts *options, datadir string) error {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	confPath := opts.conf
	if confPath == "" {
		var err error
		confPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	profile, err := config.Load(confPath, opts.profile)
	if err != nil {
		return err
	}

	datadir, err = filepath.Abs(datadir)
	if err != nil {
		return err
	}

	downloader := signor.NewDownloader(opts.signorURL, datadir)
	if !opts.skipDownload {
		if err := downloader.DownloadData(cmd.Context()); err != nil {
			return err
		}
	}

	var plan *loader.LoadPlan
	if opts.loadPlan != "" {
		plan, err = loader.LoadLoadPlan(opts.loadPlan)
	} else {
		plan, err = loader.ParseLoadPlan(defaultLoadPlan)
	}
	if err != nil {
		return err
	}

	families, err := downloader.ProteinFamilyMap()
	if err != nil {
		return err
	}
	complexes, err := downloader.ComplexesMap()
	if err != nil {
		return err
	}
	pathways, err := downloader.PathwaysMap()
	if err != nil {
		return err
	}

	updators := []normalize.Updator{
		&normalize.DirectEdgeAttributeUpdator{},
		&normalize.RepresentsPrefixUpdator{},
		&normalize.NodeLocationUpdator{},
		normalize.NewNodeMemberUpdator(families, complexes,
			signor.NewGeneSymbolSearcher(signor.DefaultGeneQueryURL)),
		&normalize.InvalidCitationRemover{},
	}
	if opts.edgeCollapse {
		updators = append(updators, normalize.NewRedundantEdgeCollapser())
	}
	updators = append(updators, normalize.NewSpringLayoutUpdator())

	userAgent := fmt.Sprintf("ndexsignorloader/%s", version)
	ldr := &loader.Loader{
		DataDir:      datadir,
		Client:       ndex.NewClient(profile.Server, profile.User, profile.Password, userAgent),
		Username:     profile.User,
		Visibility:   opts.visibility,
		Style:        opts.style,
		IconURL:      opts.iconURL,
		Version:      version,
		EdgeCollapse: opts.edgeCollapse,
		Plan:         plan,
		FullPlan:     plan.WithoutLocationColumns(),
		Pipeline:     normalize.NewPipeline(updators...),
		Pathways:     pathways,
		Out:          os.Stdout,
	}
	if opts.style == "" {
		ldr.StyleCX = defaultStyle
	}
	return ldr.Run(cmd.Context())
}
