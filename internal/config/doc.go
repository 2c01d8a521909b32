// Package config loads the settings of the tablenorm commands.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML file (-config, or tablenorm.yaml / configs/tablenorm.yaml)
//	3. TABLENORM_* environment variables
//	4. Command line flags, applied by the commands themselves
//
// # Environment Variables
//
// Nested fields join their names with underscores:
//
//	TABLENORM_INPUT_FILE=messy_data.csv
//	TABLENORM_CLEANING_FILL=mean
//	TABLENORM_CLEANING_DATE_ORDER=MDY
//	TABLENORM_CLEANING_SYNONYMS=date:join_date,dob:birth_date
//	TABLENORM_LOGGING_LEVEL=debug
//	TABLENORM_WORKERS=4
//
// Column rules are only read from the YAML file:
//
//	cleaning:
//	  rules:
//	    - column: city
//	      type: string
//	      case: upper
//	    - column: marks
//	      type: number
//	      fill: mean
//
// # Validation
//
// Load does not validate so that flags can be applied on top. Call
// Config.Validate before use; it reports every offending field at once as a
// VALIDATION error.
package config
