package config

// Application constants
const (
	// Application Info
	AppName    = "tablenorm"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. TABLENORM_CLEANING_FILL
	EnvPrefix = "TABLENORM"

	// Defaults
	DefaultWorkers     = 1
	DefaultSQLiteTable = "cleaned"
	DefaultSheet       = "cleaned"
	DefaultLogFile     = "logs/tablenorm.log"
	DefaultPreviewRows = 10

	// Sample data written by the normalizer's -sample flag
	DefaultSampleInput  = "messy_data.csv"
	DefaultSampleOutput = "cleaned_data.csv"
)

// DefaultConfigFiles are the locations searched when no config file is given.
var DefaultConfigFiles = []string{
	"tablenorm.yaml",
	"configs/tablenorm.yaml",
}
