package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"imgharvest/pkg/bing"
	"imgharvest/pkg/config"
	"imgharvest/pkg/imageproc"
	"imgharvest/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage imgharvest configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IMGHARVEST_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.imgharvest.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Output and log path accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# imgharvest configuration file
#
# Every option can also be set through environment variables prefixed with
# IMGHARVEST_, for example IMGHARVEST_OUTPUT_DIR or IMGHARVEST_REMBG_URL.

search:
  endpoint: "https://www.bing.com/images/async"

  # off, moderate or strict
  adult_filter: "off"

  # line, photo, clipart, gif, transparent; anything else means no filter
  image_filter: ""

  user_agent: ""

download:
  output_directory: "./images"

  # png, jpeg or webp; unknown names fall back to png
  format: "png"

  request_timeout: 60s

  # keep going when a single image fails to download or normalize
  isolate_failures: false

processing:
  resize: true
  width: 1080
  height: 1920
  remove_background: false
  blur_sigma: 15
  jpeg_quality: 75
  webp_quality: 80

segmentation:
  # address of a 'rembg s' server
  endpoint: "http://localhost:7000"
  model: ""
  timeout: 2m

rate_limit:
  # 0 disables rate limiting
  requests_per_minute: 120
  # token_bucket or sliding_window
  strategy: "token_bucket"

logging:
  # debug, info, warn, error
  level: "info"
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".imgharvest.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		return reported(fmt.Errorf("%s already exists", configPath))
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return reported(err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file")
	fmt.Println("2. Run 'imgharvest config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'imgharvest fetch <query>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return reported(err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return reported(err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IMGHARVEST_*)")
	if path := configPath(); path != "" {
		fmt.Printf("3. Configuration file: %s\n", path)
	} else {
		fmt.Println("3. Configuration file: (none found)")
	}
	fmt.Println("4. Default values")
	return nil
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.FindConfigFile()
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath()
	if path == "" {
		ui.PrintError("No configuration file found", "Specify a file with --config flag")
		return reported(fmt.Errorf("no configuration file found"))
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return reported(err)
	}

	warnings := []string{}
	problems := []string{}

	if cfg.Search.ImageFilter != "" && bing.MapImageFilter(cfg.Search.ImageFilter) == "" {
		warnings = append(warnings, fmt.Sprintf("image filter %q is unknown and will be ignored (known: %s)",
			cfg.Search.ImageFilter, strings.Join(bing.ImageFilterNames(), ", ")))
	}
	if !imageproc.KnownFormat(cfg.Download.Format) {
		warnings = append(warnings, fmt.Sprintf("format %q is unknown, png will be used", cfg.Download.Format))
	}
	if imageproc.ParseFormat(cfg.Download.Format) == imageproc.WEBP && !imageproc.HasEncoder("webp") {
		problems = append(problems, "webp output is not available in this build")
	}

	if err := os.MkdirAll(cfg.Download.OutputDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return reported(fmt.Errorf("configuration has %d errors", len(problems)))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Download.OutputDirectory)
	fmt.Printf("  Format: %s\n", imageproc.ParseFormat(cfg.Download.Format))
	if cfg.Processing.Resize {
		fmt.Printf("  Canvas: %dx%d\n", cfg.Processing.Width, cfg.Processing.Height)
	} else {
		fmt.Println("  Canvas: (no resize)")
	}
	fmt.Printf("  Remove background: %t\n", cfg.Processing.RemoveBackground)
	fmt.Printf("  Rate limit: %d requests/minute (%s)\n", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Strategy)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
