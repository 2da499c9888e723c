package common

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
)

// CommonFlags contains flags that are shared by every command
type CommonFlags struct {
	// Environment and configuration
	EnvFile    *string
	ConfigFile *string
	LogDir     *string

	// Logging and output
	Verbose  *bool
	Silent   *bool
	NoEmojis *bool
	NoColors *bool

	// Help and version
	Version *bool
	Help    *bool
}

// RegisterCommonFlags registers common flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		EnvFile:    fs.String("env", ".env", "Environment file path"),
		ConfigFile: fs.String("config", "", "Optional YAML config file"),
		LogDir:     fs.String("log-dir", "", "Trade journal directory (overrides config)"),

		Verbose:  fs.Bool("verbose", false, "Enable verbose output"),
		Silent:   fs.Bool("silent", false, "Enable silent mode (minimal output)"),
		NoEmojis: fs.Bool("no-emojis", false, "Disable emoji output"),
		NoColors: fs.Bool("no-colors", false, "Disable colored output"),

		Version: fs.Bool("version", false, "Show version information"),
		Help:    fs.Bool("help", false, "Show help information"),
	}
}

// FlagValidator collects every flag problem so they can be reported together
type FlagValidator struct {
	problems []string
}

// NewFlagValidator creates a new flag validator
func NewFlagValidator() *FlagValidator {
	return &FlagValidator{}
}

// ValidateChoice records an error unless value is one of choices
func (v *FlagValidator) ValidateChoice(name, value string, choices []string) *FlagValidator {
	if !slices.Contains(choices, value) {
		v.AddError(fmt.Sprintf("%s must be one of [%s], got: %s", name, strings.Join(choices, ", "), value))
	}
	return v
}

// ValidateFile records an error when path is set but missing, or required and empty
func (v *FlagValidator) ValidateFile(name, path string, required bool) *FlagValidator {
	switch {
	case path == "" && required:
		v.AddError(name + " is required")
	case path != "":
		if _, err := os.Stat(path); err != nil {
			v.AddError(fmt.Sprintf("%s file does not exist: %s", name, path))
		}
	}
	return v
}

// RequireTogether records an error when some but not all of the named values are set
func (v *FlagValidator) RequireTogether(values map[string]string) *FlagValidator {
	var missing []string
	for name, value := range values {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 && len(missing) < len(values) {
		sort.Strings(missing)
		v.AddError("missing " + strings.Join(missing, ", "))
	}
	return v
}

// AddError adds a custom validation error
func (v *FlagValidator) AddError(message string) *FlagValidator {
	v.problems = append(v.problems, message)
	return v
}

// HasErrors returns true if there are validation errors
func (v *FlagValidator) HasErrors() bool {
	return len(v.problems) > 0
}

// GetErrors returns all validation errors in the order they were found
func (v *FlagValidator) GetErrors() []string {
	return v.problems
}

// GetError joins the validation errors, nil when there are none
func (v *FlagValidator) GetError() error {
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid flags: %s", strings.Join(v.problems, "; "))
}

// PrintErrors writes one line per problem
func (v *FlagValidator) PrintErrors(w io.Writer) {
	if len(v.problems) == 0 {
		return
	}
	fmt.Fprintln(w, "❌ Flag validation errors:")
	for _, p := range v.problems {
		fmt.Fprintf(w, "   • %s\n", p)
	}
}

// UsageFormatter prints help text: description, examples, environment and flags
type UsageFormatter struct {
	AppName        string
	AppDescription string
	Examples       []UsageExample
	EnvVars        []UsageEnv
}

// UsageExample represents a usage example
type UsageExample struct {
	Command     string
	Description string
}

// UsageEnv documents an environment variable the command reads
type UsageEnv struct {
	Name        string
	Description string
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{AppName: appName, AppDescription: description}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{Command: command, Description: description})
	return u
}

// AddEnv documents an environment variable
func (u *UsageFormatter) AddEnv(name, description string) *UsageFormatter {
	u.EnvVars = append(u.EnvVars, UsageEnv{Name: name, Description: description})
	return u
}

// PrintUsage prints formatted usage information followed by the flag defaults of fs
func (u *UsageFormatter) PrintUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "%s - %s\n\n", u.AppName, u.AppDescription)
	fmt.Fprintf(w, "USAGE:\n  %s [OPTIONS]\n\n", u.AppName)

	if len(u.Examples) > 0 {
		fmt.Fprintln(w, "EXAMPLES:")
		for _, ex := range u.Examples {
			fmt.Fprintf(w, "  # %s\n  %s\n\n", ex.Description, ex.Command)
		}
	}

	if len(u.EnvVars) > 0 {
		fmt.Fprintln(w, "ENVIRONMENT:")
		for _, env := range u.EnvVars {
			fmt.Fprintf(w, "  %-22s %s\n", env.Name, env.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "OPTIONS:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// CheckHelpAndVersion handles -help and -version; true means the command should exit
func CheckHelpAndVersion(w io.Writer, appName string, commonFlags *CommonFlags, formatter *UsageFormatter, fs *flag.FlagSet) bool {
	if *commonFlags.Version {
		PrintVersion(w, appName)
		return true
	}

	if *commonFlags.Help {
		formatter.PrintUsage(w, fs)
		return true
	}

	return false
}

// SetupLogger configures logger based on common flags
func SetupLogger(logger *Logger, commonFlags *CommonFlags) {
	if *commonFlags.Silent {
		logger.SetSilentMode(true)
	}

	if *commonFlags.Verbose {
		logger.Level = LogLevelDebug
	}

	if *commonFlags.NoEmojis {
		logger.ShowEmojis = false
	}

	if *commonFlags.NoColors {
		logger.ShowColors = false
	}
}
