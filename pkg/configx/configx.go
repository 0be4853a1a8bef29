package configx

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/marcodd23/go-micro-dbx/pkg/validator"
	"github.com/spf13/viper"
)

const defaultConfigBaseName = "property"

func LoadConfigForEnv(config Config) error {
	return ReadConfiguration(getEnvPropertyFileName(defaultConfigBaseName), config)
}

// LoadConfigFromPathForEnv - search the property-<ENV> properties in the given search path (for ex. "./config" )
func LoadConfigFromPathForEnv(searchPath string, config Config) error {
	if searchPath == "" {
		return LoadConfigForEnv(config)
	}

	searchPath = strings.TrimSuffix(searchPath, "/")
	return ReadConfiguration(getEnvPropertyFileName(fmt.Sprintf("%s/%s", searchPath, defaultConfigBaseName)), config)
}

// ReadConfiguration reads the configuration from the file and environment variables
func ReadConfiguration(configFilePath string, config Config) error {
	log.Println("config filepath: ", configFilePath)

	v := viper.New()
	v.SetConfigFile(configFilePath) // Specify the file to read
	v.SetConfigType("yaml")         // Specify the config file type (yaml)
	v.AutomaticEnv()                // Enable automatic environment variable binding

	// Replace dots in keys with underscores in environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Attempt to read the configuration file
	if err := v.ReadInConfig(); err == nil {
		log.Printf("Reading configuration from config file: %s\nSet environment variables will OVERRIDE these values, as the environment takes precedent.", configFilePath)
	} else {
		log.Println("No configuration file found, reading configuration from environment variables.")
	}

	// Unmarshal the configuration into the provided struct
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("unable to decode into config struct, %v", err)
	}

	return nil
}

// LoadAndValidate reads the configuration for the current ENVIRONMENT from searchPath and
// validates it against its `validate` struct tags.
func LoadAndValidate(searchPath string, config Config) error {
	if err := LoadConfigFromPathForEnv(searchPath, config); err != nil {
		return err
	}

	return Validate(config)
}

// Validate checks the `validate` struct tags of config.
func Validate(config any) error {
	if errs := validator.NewValidator().ValidateStruct(config); len(errs) > 0 {
		return validator.NewValidationError(errs)
	}

	return nil
}

func getEnvPropertyFileName(baseFileName string) string {
	env := strings.ToUpper(os.Getenv("ENVIRONMENT"))
	if !checkIfLocalEnv(env) {
		return fmt.Sprintf("%s-%s.yaml", baseFileName, strings.ToLower(env))
	}

	return fmt.Sprintf("%s.yaml", baseFileName)
}

func checkIfLocalEnv(env string) bool {
	switch strings.ToUpper(env) {
	case "DEV", "STAGE", "PROD":
		return false
	}

	return true
}
