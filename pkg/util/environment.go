package util

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// LoadEnvironmentFiles loads dotenv files into the process environment.
// Variables already set are left alone and missing files are skipped.
func LoadEnvironmentFiles(filenames ...string) error {
	for _, filename := range filenames {
		err := godotenv.Load(filename)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return err
		}
	}

	return nil
}
